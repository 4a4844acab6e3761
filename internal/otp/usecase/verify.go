package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpify/internal/otp/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

var (
	errNoActiveOTP    = goerror.NewBusiness("No active OTP found for this email", goerror.CodeNotFound)
	errAlreadyUsed    = goerror.NewBusiness("OTP already used", goerror.CodeNotFound)
	errExpired        = goerror.NewBusiness("OTP expired", goerror.CodeInvalidInput)
	errTooManyAttempt = goerror.NewBusiness("Too many attempts. Request a new OTP.", goerror.CodeInvalidInput)
	errInvalidOTP     = goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidInput)
)

type VerifyInput struct {
	UserID string
	Email  string `validate:"required,email,max=320"`
	OTP    string `validate:"required,max=32"`
}

type VerifyOutput struct {
	Message string
}

const msgVerified = "OTP verified successfully"

// Verify checks a code against the active challenge for the email. Every
// state change is a conditional write; a lost race re-reads the row.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (_ *VerifyOutput, err error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	started := s.clock.Now()
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var outcome entity.Outcome
	defer func() {
		label := outcome.String()
		if code := goerror.CodeOf(err); err != nil && (code == goerror.CodeInternal || code == goerror.CodeTimeout) {
			label = "error"
		}
		s.outcomes.WithLabelValues("verify", label).Inc()
		s.recordUsage(ctx, in.UserID, EndpointVerify, in.Email, err == nil, started)
	}()

	pol := s.policy()
	backoff := retry.WithMaxRetries(pol.casRetries, retry.NewConstant(5*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pol.queryTimeout)
		defer cancel()

		c, err := s.repoDB.GetChallenge(ctx, in.Email)
		if errors.Is(err, goerror.ErrNotFound) {
			c = nil
		} else if err != nil {
			return err
		}

		match := c != nil && s.matches(c, in.OTP)

		var tr *entity.Transition
		outcome, tr = entity.Decide(c, s.clock.Now(), match)
		if tr == nil {
			return nil
		}

		err = s.repoDB.TransitionChallenge(ctx, *tr)
		if errors.Is(err, goerror.ErrStale) {
			slog.WarnContext(ctx, "otp challenge changed concurrently, re-reading", "email", in.Email)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	switch outcome {
	case entity.OutcomeVerified:
		slog.InfoContext(ctx, "otp verified", "email", in.Email, "user_id", in.UserID)
		return &VerifyOutput{Message: msgVerified}, nil
	case entity.OutcomeAlreadyUsed:
		return nil, errAlreadyUsed
	case entity.OutcomeExpired:
		return nil, errExpired
	case entity.OutcomeExhausted:
		return nil, errTooManyAttempt
	case entity.OutcomeInvalid:
		slog.WarnContext(ctx, "invalid otp presented", "email", in.Email)
		return nil, errInvalidOTP
	default:
		return nil, errNoActiveOTP
	}
}
