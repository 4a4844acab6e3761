package inbound

import (
	"context"

	"github.com/shandysiswandi/otpify/internal/identity/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.UserOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) error
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error

	Me(ctx context.Context, userID string) (*usecase.UserOutput, error)
	RegenerateAPIKey(ctx context.Context, userID string) (*usecase.UserOutput, error)
}

// RegisterHTTPEndpoint mounts the auth routes. public wraps the routes that
// need no credential (typically a per-IP limit); session guards the rest.
func RegisterHTTPEndpoint(r *router.Router, uc uc, session router.Authenticator, public ...router.Middleware) {
	end := &HTTPEndpoint{uc: uc}
	authed := router.Authenticate(session)

	r.POST("/api/auth/register", end.Register, public...)
	r.POST("/api/auth/login", end.Login, public...)
	r.POST("/api/auth/forgot-password", end.PasswordForgot, public...)
	r.POST("/api/auth/reset-password", end.PasswordReset, public...)

	r.GET("/api/auth/me", end.Me, authed)
	r.POST("/api/auth/regenerate-api-key", end.RegenerateAPIKey, authed)
}
