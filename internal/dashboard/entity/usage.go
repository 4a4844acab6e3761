package entity

import "time"

// Usage statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// UsageLog is one recorded OTP send or verify call.
type UsageLog struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Endpoint  string    `db:"endpoint"`
	Status    string    `db:"status"`
	Email     string    `db:"email"`
	LatencyMS int64     `db:"latency_ms"`
	CreatedAt time.Time `db:"created_at"`
}

// Summary aggregates every usage log of one user.
type Summary struct {
	Total          int64 `db:"total"`
	Succeeded      int64 `db:"succeeded"`
	TotalLatencyMS int64 `db:"total_latency_ms"`
}

// DayCount is the number of calls made on one UTC day.
type DayCount struct {
	Day   time.Time `db:"day"`
	Count int64     `db:"count"`
}
