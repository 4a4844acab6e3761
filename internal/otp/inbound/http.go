package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpify/internal/otp/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) (*usecase.SendOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
}

// RegisterHTTPEndpoint mounts the OTP routes behind the API key check and the
// per-key limiter for each operation class.
func RegisterHTTPEndpoint(r *router.Router, uc uc, apiKey router.Authenticator, limiter ratelimit.Limiter, limitTimeout time.Duration, clk clock.Clocker) {
	end := &HTTPEndpoint{uc: uc}
	authed := router.Authenticate(apiKey)

	r.POST("/api/otp/send", end.Send, authed, router.RateLimit(limiter, ratelimit.ClassSend, clk, limitTimeout))
	r.POST("/api/otp/verify", end.Verify, authed, router.RateLimit(limiter, ratelimit.ClassVerify, clk, limitTimeout))
}
