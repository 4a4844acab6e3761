package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/idempotency"
)

type PasswordForgotInput struct {
	Email string `validate:"required,email"`
}

// PasswordForgot starts a reset for the account behind email, if any. The
// caller always gets the same answer; repeated requests inside the cooldown
// are dropped.
func (s *Usecase) PasswordForgot(ctx context.Context, in PasswordForgotInput) error {
	ctx, span := s.startSpan(ctx, "PasswordForgot")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	emailDigest, err := s.digest(in.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest email", "error", err)
		return goerror.NewServer(err)
	}

	err = s.idemp.Exec(ctx, "forgot_password:"+emailDigest, func(ctx context.Context) error {
		return s.startPasswordReset(ctx, in.Email)
	},
		idempotency.WithLockDuration(s.cfg.GetSecond("modules.identity.password_forgot_lock_seconds")),
		idempotency.WithStateTTL(s.cfg.GetSecond("modules.identity.password_forgot_cooldown_seconds")),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyInProgress),
		errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.InfoContext(ctx, "password reset suppressed by cooldown", "email", in.Email, "reason", err)
		return nil
	default:
		slog.ErrorContext(ctx, "failed to start password reset", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}
}

func (s *Usecase) startPasswordReset(ctx context.Context, email string) error {
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "password reset requested for unavailable user", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	if !user.IsActive {
		slog.WarnContext(ctx, "password reset requested for inactive user", "user_id", user.ID)
		return nil
	}

	token, err := s.tokens.Token("")
	if err != nil {
		return err
	}

	tokenDigest, err := s.digest(token)
	if err != nil {
		return err
	}

	expiresAt := s.clock.Now().Add(s.cfg.GetMinute("modules.identity.password_reset_ttl_minutes"))
	if err := s.repoDB.SetResetToken(ctx, user.ID, tokenDigest, expiresAt); err != nil {
		return err
	}

	if err := s.repoMessaging.PublishUserForgotPassword(ctx, UserForgotPasswordEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		ResetToken: token,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user forgot password", "user_id", user.ID, "error", err)
	}

	return nil
}
