package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpify/internal/dashboard/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

type RecordUsageInput struct {
	ID         string `validate:"required,uuid"`
	UserID     string `validate:"required,uuid"`
	Endpoint   string `validate:"required,max=64"`
	Status     string `validate:"required,oneof=success failed"`
	Email      string `validate:"omitempty,max=320"`
	LatencyMS  int64  `validate:"min=0"`
	OccurredAt time.Time
}

// RecordUsage persists one usage event. Replays of the same event id are
// absorbed by the store.
func (s *Usecase) RecordUsage(ctx context.Context, in RecordUsageInput) error {
	ctx, span := s.startSpan(ctx, "RecordUsage")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	at := in.OccurredAt
	if at.IsZero() {
		at = s.clock.Now()
	}

	err := s.repoDB.InsertUsage(ctx, entity.UsageLog{
		ID:        in.ID,
		UserID:    in.UserID,
		Endpoint:  in.Endpoint,
		Status:    in.Status,
		Email:     in.Email,
		LatencyMS: in.LatencyMS,
		CreatedAt: at.UTC(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo insert usage", "usage_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
