package inbound

import (
	"context"

	"github.com/shandysiswandi/otpify/internal/dashboard/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

type uc interface {
	Stats(ctx context.Context, userID string) (*usecase.StatsOutput, error)
	Logs(ctx context.Context, in usecase.LogsInput) ([]usecase.LogOutput, error)
	RecordUsage(ctx context.Context, in usecase.RecordUsageInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, session router.Authenticator) {
	end := &HTTPEndpoint{uc: uc}
	authed := router.Authenticate(session)

	r.GET("/api/dashboard/stats", end.Stats, authed)
	r.GET("/api/dashboard/logs", end.Logs, authed)
}
