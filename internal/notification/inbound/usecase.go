package inbound

import (
	"context"

	"github.com/shandysiswandi/otpify/internal/notification/usecase"
)

type uc interface {
	ConsumeUserForgotPassword(ctx context.Context, in usecase.ConsumeUserForgotPasswordInput) error
}
