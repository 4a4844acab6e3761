package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpify/internal/notification/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) UserForgotPasswordNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserForgotPasswordNotification")
	defer span.End()

	// The body carries the raw reset token, so it is never logged.
	payload, err := messaging.DecodeJSON[event.UserForgotPasswordMessage](msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user forgot password notification", "subject", msg.Subject(), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: user forgot password notification", "user_id", payload.UserID)

	if err := h.uc.ConsumeUserForgotPassword(ctx, usecase.ConsumeUserForgotPasswordInput{
		UserID: payload.UserID,
		Email:  payload.Email,
		Name:   payload.Name,
		Token:  payload.ResetToken,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user forgot password", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}
