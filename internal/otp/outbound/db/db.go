package db

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpify/internal/otp/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrStale) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// UpsertChallenge stores c as the only challenge for its email, replacing
// whatever was there.
func (s *DB) UpsertChallenge(ctx context.Context, c entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO otp_challenges (email, id, code_digest, state, attempts_remaining, created_at, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			id = EXCLUDED.id,
			code_digest = EXCLUDED.code_digest,
			state = EXCLUDED.state,
			attempts_remaining = EXCLUDED.attempts_remaining,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`,
		c.Email, c.ID, c.CodeDigest, string(c.State), c.AttemptsRemaining, c.CreatedAt, c.ExpiresAt, c.UpdatedAt,
	)

	return s.mapError(err)
}

func (s *DB) GetChallenge(ctx context.Context, email string) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallenge")
	defer func() { s.endSpan(span, err) }()

	var c entity.Challenge
	err = pgxscan.Get(ctx, s.conn, &c, `
		SELECT email, id, code_digest, state, attempts_remaining, created_at, expires_at, updated_at
		FROM otp_challenges
		WHERE email = $1`,
		email,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}

// TransitionChallenge applies t only if the row is still the active
// challenge t was computed from; otherwise it reports goerror.ErrStale.
func (s *DB) TransitionChallenge(ctx context.Context, t entity.Transition) (err error) {
	ctx, span := s.startSpan(ctx, "TransitionChallenge")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE otp_challenges
		SET state = $4, attempts_remaining = $5, updated_at = $6
		WHERE email = $1 AND id = $2 AND state = 'active' AND attempts_remaining = $3`,
		t.Email, t.ID, t.ExpectAttempts, string(t.NextState), t.NextAttempts, t.At,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrStale
	}

	return nil
}
