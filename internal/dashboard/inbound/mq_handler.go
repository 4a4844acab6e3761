package inbound

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpify/internal/dashboard/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
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

// OTPUsage records a usage event. Undecodable or invalid events are dropped
// since a redelivery cannot fix them.
func (h *MQHandler) OTPUsage(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("dashboard.inbound.mq").Start(ctx, "OTPUsage")
	defer span.End()

	payload, err := messaging.DecodeJSON[event.OTPUsageMessage](msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp usage", "msg_body", string(msg.Body()), "error", err)
		return nil
	}

	err = h.uc.RecordUsage(ctx, usecase.RecordUsageInput{
		ID:         payload.ID,
		UserID:     payload.UserID,
		Endpoint:   payload.Endpoint,
		Status:     payload.Status,
		Email:      payload.Email,
		LatencyMS:  payload.LatencyMS,
		OccurredAt: payload.OccurredAt,
	})

	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Type() == goerror.TypeValidation {
		slog.WarnContext(ctx, "dropping invalid otp usage event", "usage_id", payload.ID, "error", err)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume otp usage", "usage_id", payload.ID, "error", err)
		return err
	}

	return nil
}
