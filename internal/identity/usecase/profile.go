package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpify/internal/identity/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

var errUserNotFound = goerror.NewBusiness("User not found", goerror.CodeNotFound)

func (s *Usecase) Me(ctx context.Context, userID string) (*UserOutput, error) {
	ctx, span := s.startSpan(ctx, "Me")
	defer span.End()

	user, err := s.repoDB.GetUserByID(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.present(ctx, user)
}

// RegenerateAPIKey replaces the key in a single update; the previous key
// stops authenticating as soon as it commits.
func (s *Usecase) RegenerateAPIKey(ctx context.Context, userID string) (*UserOutput, error) {
	ctx, span := s.startSpan(ctx, "RegenerateAPIKey")
	defer span.End()

	var user *entity.User
	err := retry.Do(ctx, retry.WithMaxRetries(apiKeyAttempts-1, retry.NewConstant(time.Millisecond)), func(ctx context.Context) error {
		key, err := s.issueAPIKey(userID)
		if err != nil {
			return err
		}

		user, err = s.repoDB.RotateAPIKey(ctx, entity.APIKeyRotation{
			UserID:    userID,
			Digest:    key.digest,
			Sealed:    key.sealed,
			UpdatedAt: s.clock.Now(),
		})
		if errors.Is(err, entity.ErrAPIKeyTaken) {
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo rotate api key", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "api key regenerated", "user_id", userID)

	return s.present(ctx, user)
}
