package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpify/internal/dashboard/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
)

// chartDays is the width of the usage chart, today included.
const chartDays = 7

const dayKey = "2006-01-02"

type ChartPoint struct {
	Name  string
	Value int64
}

type StatsOutput struct {
	TotalRequests int64
	SuccessRate   string
	AvgResponse   string
	ActiveUsers   int64
	ChartData     []ChartPoint
}

// Stats summarizes the caller's OTP traffic. The chart runs oldest day first
// and always has one point per day.
func (s *Usecase) Stats(ctx context.Context, userID string) (*StatsOutput, error) {
	ctx, span := s.startSpan(ctx, "Stats")
	defer span.End()

	sum, err := s.repoDB.Summary(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo usage summary", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	active, err := s.repoDB.CountActiveUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count active users", "error", err)
		return nil, goerror.NewServer(err)
	}

	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(chartDays - 1))

	days, err := s.repoDB.DailyCounts(ctx, userID, first, today.AddDate(0, 0, 1))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo daily usage counts", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &StatsOutput{
		TotalRequests: sum.Total,
		SuccessRate:   successRate(sum),
		AvgResponse:   avgResponse(sum),
		ActiveUsers:   active,
		ChartData:     chart(first, days),
	}, nil
}

func successRate(sum *entity.Summary) string {
	if sum.Total == 0 {
		return "0%"
	}

	return fmt.Sprintf("%.1f%%", float64(sum.Succeeded)*100/float64(sum.Total))
}

func avgResponse(sum *entity.Summary) string {
	if sum.Total == 0 {
		return "0ms"
	}

	return fmt.Sprintf("%dms", int64(math.Round(float64(sum.TotalLatencyMS)/float64(sum.Total))))
}

func chart(first time.Time, days []entity.DayCount) []ChartPoint {
	counts := lo.SliceToMap(days, func(d entity.DayCount) (string, int64) {
		return d.Day.UTC().Format(dayKey), d.Count
	})

	return lo.Times(chartDays, func(i int) ChartPoint {
		day := first.AddDate(0, 0, i)
		return ChartPoint{Name: day.Format("Mon"), Value: counts[day.Format(dayKey)]}
	})
}
