package event

import "time"

const OTPUsageDestination string = "otp_usage"
const OTPUsageConsumerDashboard string = "otp_usage_dashboard"

// Usage statuses.
const (
	UsageStatusSuccess = "success"
	UsageStatusFailed  = "failed"
)

// OTPUsageMessage records one send or verify call.
type OTPUsageMessage struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	Status     string    `json:"status"`
	Email      string    `json:"email"`
	LatencyMS  int64     `json:"latency_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}
