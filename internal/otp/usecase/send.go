package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpify/internal/otp/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

type SendInput struct {
	UserID string
	Email  string `validate:"required,email,max=320"`
}

type SendOutput struct {
	Message string
}

const msgSent = "OTP sent successfully"

// Send issues a fresh challenge for the email and mails the code. Any earlier
// challenge for the same email is replaced and can no longer verify.
func (s *Usecase) Send(ctx context.Context, in SendInput) (_ *SendOutput, err error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	started := s.clock.Now()
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	defer func() {
		outcome := "sent"
		if err != nil {
			outcome = "failed"
		}
		s.outcomes.WithLabelValues("send", outcome).Inc()
		s.recordUsage(ctx, in.UserID, EndpointSend, in.Email, err == nil, started)
	}()

	pol := s.policy()

	code, err := s.generator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	challengeID := s.uuid.Generate()
	digest, err := s.codeDigest(challengeID, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	upsertCtx, cancel := context.WithTimeout(ctx, pol.queryTimeout)
	defer cancel()
	if err := s.repoDB.UpsertChallenge(upsertCtx, entity.Challenge{
		ID:                challengeID,
		Email:             in.Email,
		CodeDigest:        digest,
		State:             entity.StateActive,
		AttemptsRemaining: pol.maxAttempts,
		CreatedAt:         now,
		ExpiresAt:         now.Add(pol.ttl),
		UpdatedAt:         now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.deliver(ctx, in.Email, code, pol); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp email", "email", in.Email, "challenge_id", challengeID, "error", err)
		return nil, goerror.NewDelivery(err, "Failed to send OTP email")
	}

	slog.InfoContext(ctx, "otp sent", "email", in.Email, "challenge_id", challengeID, "user_id", in.UserID)

	return &SendOutput{Message: msgSent}, nil
}

func (s *Usecase) deliver(ctx context.Context, email, code string, pol policy) error {
	backoff := retry.WithMaxRetries(pol.deliveryRetries, retry.NewExponential(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, pol.deliveryTimeout)
		defer cancel()

		if err := s.repoMail.SendOTP(sendCtx, email, code, pol.ttl); err != nil {
			slog.WarnContext(ctx, "otp email attempt failed", "email", email, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
