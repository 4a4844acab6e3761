package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpify/internal/identity/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const constraintAPIKeyDigest = "identity_users_api_key_digest_key"

type DB struct {
	conn    *pgxpool.Pool
	ins     instrument.Instrumentation
	timeout time.Duration
}

// NewDB bounds every query by timeout; zero leaves the caller's deadline alone.
func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation, timeout time.Duration) *DB {
	return &DB{conn: conn, ins: ins, timeout: timeout}
}

// - 23505 unique violation on the api key digest → entity.ErrAPIKeyTaken
// - 23505 any other unique violation → goerror.ErrConflict
// - 22P02 malformed uuid → goerror.ErrNotFound
// - no rows → goerror.ErrNotFound
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == constraintAPIKeyDigest:
			return entity.ErrAPIKeyTaken
		case pgErr.Code == "23505":
			return goerror.ErrConflict
		case pgErr.Code == "22P02":
			return goerror.ErrNotFound
		}
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	ctx, span := s.ins.Tracer("identity.outbound.db").Start(ctx, name)

	return ctx, span, cancel
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil &&
		!errors.Is(err, goerror.ErrNotFound) &&
		!errors.Is(err, goerror.ErrConflict) &&
		!errors.Is(err, entity.ErrAPIKeyTaken) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
