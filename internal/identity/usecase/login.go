package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

const TokenTypeBearer = "bearer"

var errBadCredentials = goerror.NewBusiness("Incorrect email or password", goerror.CodeUnauthorized)

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	AccessToken string
	TokenType   string
	User        UserOutput
}

// Login exchanges email and password for a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := strings.TrimSpace(strings.ToLower(in.Username))
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", email)
		s.burnPassword(in.Password)
		return nil, errBadCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, errBadCredentials
	}

	if err := s.ensureActive(ctx, user); err != nil {
		return nil, err
	}

	acToken, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out, err := s.present(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		AccessToken: acToken,
		TokenType:   TokenTypeBearer,
		User:        *out,
	}, nil
}
