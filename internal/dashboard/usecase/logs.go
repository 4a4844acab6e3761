package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpify/internal/dashboard/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

// DefaultLogsLimit applies when the caller gives no limit.
const DefaultLogsLimit = 10

type LogsInput struct {
	UserID string
	Limit  int `validate:"min=1,max=100"`
}

type LogOutput struct {
	ID        string
	Endpoint  string
	Status    string
	Email     string
	Timestamp time.Time
}

// Logs returns the caller's most recent usage, newest first.
func (s *Usecase) Logs(ctx context.Context, in LogsInput) ([]LogOutput, error) {
	ctx, span := s.startSpan(ctx, "Logs")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	logs, err := s.repoDB.ListUsage(ctx, in.UserID, in.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list usage", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return lo.Map(logs, func(l entity.UsageLog, _ int) LogOutput {
		email := l.Email
		if email == "" {
			email = "N/A"
		}
		return LogOutput{
			ID:        l.ID,
			Endpoint:  l.Endpoint,
			Status:    l.Status,
			Email:     email,
			Timestamp: l.CreatedAt,
		}
	}), nil
}
