package db

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpify/internal/dashboard/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn    *pgxpool.Pool
	ins     instrument.Instrumentation
	timeout time.Duration
}

// NewDB bounds every query by timeout; zero leaves the caller's deadline alone.
func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation, timeout time.Duration) *DB {
	return &DB{conn: conn, ins: ins, timeout: timeout}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return goerror.ErrNotFound
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	ctx, span := s.ins.Tracer("dashboard.outbound.db").Start(ctx, name)

	return ctx, span, cancel
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InsertUsage stores l once; a redelivered event with the same id is a no-op.
func (s *DB) InsertUsage(ctx context.Context, l entity.UsageLog) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "InsertUsage")
	defer func() { cancel(); s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO usage_logs (id, user_id, endpoint, status, email, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		l.ID, l.UserID, l.Endpoint, l.Status, l.Email, l.LatencyMS, l.CreatedAt,
	)

	return s.mapError(err)
}

func (s *DB) Summary(ctx context.Context, userID string) (_ *entity.Summary, err error) {
	ctx, span, cancel := s.startSpan(ctx, "Summary")
	defer func() { cancel(); s.endSpan(span, err) }()

	var out entity.Summary
	err = pgxscan.Get(ctx, s.conn, &out, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'success') AS succeeded,
			COALESCE(SUM(latency_ms), 0)::BIGINT AS total_latency_ms
		FROM usage_logs
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}

// DailyCounts returns per-day call counts in [from, to). Days without calls
// are absent.
func (s *DB) DailyCounts(ctx context.Context, userID string, from, to time.Time) (_ []entity.DayCount, err error) {
	ctx, span, cancel := s.startSpan(ctx, "DailyCounts")
	defer func() { cancel(); s.endSpan(span, err) }()

	var out []entity.DayCount
	err = pgxscan.Select(ctx, s.conn, &out, `
		SELECT
			(date_trunc('day', created_at AT TIME ZONE 'UTC') AT TIME ZONE 'UTC') AS day,
			COUNT(*) AS count
		FROM usage_logs
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY 1
		ORDER BY 1`,
		userID, from, to,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

// ListUsage returns the newest logs of the user first.
func (s *DB) ListUsage(ctx context.Context, userID string, limit int) (_ []entity.UsageLog, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListUsage")
	defer func() { cancel(); s.endSpan(span, err) }()

	var out []entity.UsageLog
	err = pgxscan.Select(ctx, s.conn, &out, `
		SELECT id, user_id, endpoint, status, email, latency_ms, created_at
		FROM usage_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

// CountActiveUsers counts accounts that may still log in.
func (s *DB) CountActiveUsers(ctx context.Context) (_ int64, err error) {
	ctx, span, cancel := s.startSpan(ctx, "CountActiveUsers")
	defer func() { cancel(); s.endSpan(span, err) }()

	var n int64
	err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM identity_users WHERE is_active`).Scan(&n)

	return n, s.mapError(err)
}
