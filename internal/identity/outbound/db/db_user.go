package db

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shandysiswandi/otpify/internal/identity/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

const userColumns = `id, name, email, password_hash, api_key_sealed, is_active, created_at, updated_at`

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateUser")
	defer func() { cancel(); s.endSpan(span, err) }()

	var user entity.User
	err = pgxscan.Get(ctx, s.conn, &user, `
		INSERT INTO identity_users (id, name, email, password_hash, api_key_digest, api_key_sealed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+userColumns,
		in.ID, in.Name, in.Email, in.PasswordHash, in.APIKeyDigest, in.APIKeySealed, in.CreatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

func (s *DB) GetUserByID(ctx context.Context, id string) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetUserByID")
	defer func() { cancel(); s.endSpan(span, err) }()

	return s.getUser(ctx, `SELECT `+userColumns+` FROM identity_users WHERE id = $1`, id)
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetUserByEmail")
	defer func() { cancel(); s.endSpan(span, err) }()

	return s.getUser(ctx, `SELECT `+userColumns+` FROM identity_users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *DB) GetUserByAPIKeyDigest(ctx context.Context, digest string) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetUserByAPIKeyDigest")
	defer func() { cancel(); s.endSpan(span, err) }()

	return s.getUser(ctx, `SELECT `+userColumns+` FROM identity_users WHERE api_key_digest = $1`, digest)
}

func (s *DB) getUser(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User
	if err := pgxscan.Get(ctx, s.conn, &user, query, arg); err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

func (s *DB) RotateAPIKey(ctx context.Context, in entity.APIKeyRotation) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "RotateAPIKey")
	defer func() { cancel(); s.endSpan(span, err) }()

	var user entity.User
	err = pgxscan.Get(ctx, s.conn, &user, `
		UPDATE identity_users
		SET api_key_digest = $2, api_key_sealed = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns,
		in.UserID, in.Digest, in.Sealed, in.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

func (s *DB) SetResetToken(ctx context.Context, userID, digest string, expiresAt time.Time) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "SetResetToken")
	defer func() { cancel(); s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE identity_users
		SET reset_token_digest = $2, reset_expires_at = $3, updated_at = NOW()
		WHERE id = $1`,
		userID, digest, expiresAt,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) GetResetTicket(ctx context.Context, digest string) (_ *entity.ResetTicket, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetResetTicket")
	defer func() { cancel(); s.endSpan(span, err) }()

	var ticket entity.ResetTicket
	err = pgxscan.Get(ctx, s.conn, &ticket, `
		SELECT id, email, reset_expires_at
		FROM identity_users
		WHERE reset_token_digest = $1 AND reset_expires_at IS NOT NULL`,
		digest,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &ticket, nil
}

// ClearResetToken drops the pending reset only if it still carries digest.
func (s *DB) ClearResetToken(ctx context.Context, userID, digest string) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "ClearResetToken")
	defer func() { cancel(); s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE identity_users
		SET reset_token_digest = NULL, reset_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_token_digest = $2`,
		userID, digest,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// ResetPassword swaps the password and consumes the reset token in one
// statement, so a token can be redeemed once.
func (s *DB) ResetPassword(ctx context.Context, userID, digest, passwordHash string) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "ResetPassword")
	defer func() { cancel(); s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE identity_users
		SET password_hash = $3, reset_token_digest = NULL, reset_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_token_digest = $2`,
		userID, digest, passwordHash,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// SetActive toggles whether the account may authenticate.
func (s *DB) SetActive(ctx context.Context, userID string, active bool) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "SetActive")
	defer func() { cancel(); s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE identity_users SET is_active = $2, updated_at = NOW() WHERE id = $1`, userID, active)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
