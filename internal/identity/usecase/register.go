package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpify/internal/identity/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

// apiKeyAttempts bounds re-minting after a digest collision.
const apiKeyAttempts = 3

type RegisterInput struct {
	Name     string `validate:"omitempty,max=100,alphaspace"`
	Email    string `validate:"required,email,max=320"`
	Password string `validate:"required,password"`
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*UserOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	passHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	userID := s.uuid.Generate()
	var user *entity.User
	err = retry.Do(ctx, retry.WithMaxRetries(apiKeyAttempts-1, retry.NewConstant(time.Millisecond)), func(ctx context.Context) error {
		key, err := s.issueAPIKey(userID)
		if err != nil {
			return err
		}

		user, err = s.repoDB.CreateUser(ctx, entity.NewUser{
			ID:           userID,
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: string(passHash),
			APIKeyDigest: key.digest,
			APIKeySealed: key.sealed,
			CreatedAt:    s.clock.Now(),
		})
		if errors.Is(err, entity.ErrAPIKeyTaken) {
			slog.WarnContext(ctx, "api key digest collision, minting again", "user_id", userID)
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "registration for existing email", "email", in.Email)
		return nil, goerror.NewBusiness("The user with this email already exists in the system", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.present(ctx, user)
}
