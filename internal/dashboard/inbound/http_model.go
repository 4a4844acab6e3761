package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpify/internal/dashboard/usecase"
)

type ChartPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type StatsResponse struct {
	TotalRequests int64        `json:"total_requests"`
	SuccessRate   string       `json:"success_rate"`
	AvgResponse   string       `json:"avg_response"`
	ActiveUsers   int64        `json:"active_users"`
	ChartData     []ChartPoint `json:"chart_data"`
}

type LogResponse struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Email     string    `json:"email"`
}

func toStatsResponse(s usecase.StatsOutput) StatsResponse {
	return StatsResponse{
		TotalRequests: s.TotalRequests,
		SuccessRate:   s.SuccessRate,
		AvgResponse:   s.AvgResponse,
		ActiveUsers:   s.ActiveUsers,
		ChartData: lo.Map(s.ChartData, func(p usecase.ChartPoint, _ int) ChartPoint {
			return ChartPoint{Name: p.Name, Value: p.Value}
		}),
	}
}

func toLogResponses(logs []usecase.LogOutput) []LogResponse {
	return lo.Map(logs, func(l usecase.LogOutput, _ int) LogResponse {
		return LogResponse{
			ID:        l.ID,
			Endpoint:  l.Endpoint,
			Status:    l.Status,
			Timestamp: l.Timestamp,
			Email:     l.Email,
		}
	})
}
