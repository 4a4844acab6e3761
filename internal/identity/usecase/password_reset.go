package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

var (
	errResetTokenInvalid = goerror.NewBusiness("Invalid or expired reset token", goerror.CodeInvalidInput)
	errResetTokenExpired = goerror.NewBusiness("Reset token has expired. Please request a new one.", goerror.CodeInvalidInput)
)

type PasswordResetInput struct {
	Token       string `validate:"required"`
	NewPassword string `validate:"required,password"`
}

// PasswordReset sets a new password for the holder of a valid reset token.
// The token is single use.
func (s *Usecase) PasswordReset(ctx context.Context, in PasswordResetInput) error {
	ctx, span := s.startSpan(ctx, "PasswordReset")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	tokenDigest, err := s.digest(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest reset token", "error", err)
		return goerror.NewServer(err)
	}

	ticket, err := s.repoDB.GetResetTicket(ctx, tokenDigest)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "unknown password reset token")
		return errResetTokenInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get reset ticket", "error", err)
		return goerror.NewServer(err)
	}

	if s.clock.Now().After(ticket.ExpiresAt) {
		if err := s.repoDB.ClearResetToken(ctx, ticket.UserID, tokenDigest); err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo clear expired reset token", "user_id", ticket.UserID, "error", err)
		}
		return errResetTokenExpired
	}

	passHash, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.ResetPassword(ctx, ticket.UserID, tokenDigest, string(passHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "reset token consumed concurrently", "user_id", ticket.UserID)
		return errResetTokenInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo reset password", "user_id", ticket.UserID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "password reset completed", "user_id", ticket.UserID)

	return nil
}
