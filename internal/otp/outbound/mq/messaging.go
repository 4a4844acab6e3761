package mq

import (
	"context"

	"github.com/shandysiswandi/otpify/internal/otp/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	uuid   uid.StringID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, uuid uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uuid: uuid, ins: ins}
}

func (m *Messaging) PublishUsage(ctx context.Context, ev usecase.UsageEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishUsage")
	defer span.End()

	status := event.UsageStatusFailed
	if ev.Success {
		status = event.UsageStatusSuccess
	}

	err := messaging.PublishJSON(ctx, m.client, event.OTPUsageDestination, event.OTPUsageMessage{
		ID:         m.uuid.Generate(),
		UserID:     ev.UserID,
		Endpoint:   ev.Endpoint,
		Status:     status,
		Email:      ev.Email,
		LatencyMS:  ev.Latency.Milliseconds(),
		OccurredAt: ev.OccurredAt,
	}, messaging.Header{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
