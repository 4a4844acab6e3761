package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Fallbacks when app.web or the reset ttl are not configured.
const (
	DefaultWebURL   = "http://localhost:3000"
	defaultResetTTL = time.Hour
)

type ConsumeUserForgotPasswordInput struct {
	UserID string `validate:"required"`
	Email  string `validate:"required,email"`
	Name   string
	Token  string `validate:"required"`
}

// ConsumeUserForgotPassword mails the reset link. Invalid events are logged
// and swallowed; a failed send is retried briefly, then returned so the
// broker can redeliver.
func (s *Usecase) ConsumeUserForgotPassword(ctx context.Context, in ConsumeUserForgotPasswordInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserForgotPassword")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "validation failed", "user_id", in.UserID, "error", err)
		return nil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "User"
	}

	web := strings.TrimRight(s.cfg.GetString("app.web"), "/")
	if web == "" {
		web = DefaultWebURL
	}

	ttl := s.cfg.GetMinute("modules.identity.password_reset_ttl_minutes")
	if ttl <= 0 {
		ttl = defaultResetTTL
	}

	msg := PasswordResetMail{
		Email:    in.Email,
		Name:     name,
		Link:     web + "/reset-password?token=" + url.QueryEscape(in.Token),
		ValidFor: ttl,
	}

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.repoMail.SendPasswordReset(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send password reset email", "user_id", in.UserID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "password reset email sent", "user_id", in.UserID)

	return nil
}
