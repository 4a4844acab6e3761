package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

var (
	errInvalidSession = goerror.NewBusiness("Could not validate credentials", goerror.CodeUnauthorized)
	errMissingAPIKey  = goerror.NewBusiness("API Key header missing", goerror.CodeForbidden)
	errInvalidAPIKey  = goerror.NewBusiness("Invalid API Key", goerror.CodeForbidden)
)

// AuthOutput identifies the caller behind a credential.
type AuthOutput struct {
	UserID string
	Email  string
}

// AuthenticateByToken resolves a session token. Every verification failure
// yields the same error.
func (s *Usecase) AuthenticateByToken(ctx context.Context, token string) (*AuthOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticateByToken")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errInvalidSession
	}

	claims, err := s.jwt.Verify(token)
	if err != nil {
		slog.WarnContext(ctx, "session token rejected", "error", err)
		return nil, errInvalidSession
	}

	user, err := s.repoDB.GetUserByID(ctx, claims.UserID())
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "session token for unknown user", "user_id", claims.UserID())
		return nil, errInvalidSession
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", claims.UserID(), "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureActive(ctx, user); err != nil {
		return nil, err
	}

	return &AuthOutput{UserID: user.ID, Email: user.Email}, nil
}

// AuthenticateByAPIKey resolves an integrator API key by its digest.
func (s *Usecase) AuthenticateByAPIKey(ctx context.Context, key string) (*AuthOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticateByAPIKey")
	defer span.End()

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errMissingAPIKey
	}

	digest, err := s.digest(key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest api key", "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByAPIKeyDigest(ctx, digest)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "unknown api key presented")
		return nil, errInvalidAPIKey
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by api key", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureActive(ctx, user); err != nil {
		return nil, err
	}

	return &AuthOutput{UserID: user.ID, Email: user.Email}, nil
}
