package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpify/internal/dashboard/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	InsertUsage(ctx context.Context, l entity.UsageLog) error
	Summary(ctx context.Context, userID string) (*entity.Summary, error)
	DailyCounts(ctx context.Context, userID string, from, to time.Time) ([]entity.DayCount, error)
	ListUsage(ctx context.Context, userID string, limit int) ([]entity.UsageLog, error)
	CountActiveUsers(ctx context.Context) (int64, error)
}

type Usecase struct {
	repoDB    repoDB
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("dashboard.usecase").Start(ctx, name)
}
