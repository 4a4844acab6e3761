package mq

import (
	"context"

	"github.com/shandysiswandi/otpify/internal/identity/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

// KeyOfCorrelationID is the header carrying the request correlation id.
const KeyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserForgotPassword(ctx context.Context, msg usecase.UserForgotPasswordEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishUserForgotPassword")
	defer span.End()

	cID := instrument.GetCorrelationID(ctx)
	err := messaging.PublishJSON(ctx, m.client, event.UserForgotPasswordDestination, event.UserForgotPasswordMessage{
		UserID:     msg.UserID,
		Email:      msg.Email,
		Name:       msg.Name,
		ResetToken: msg.ResetToken,
	}, messaging.Header{Key: KeyOfCorrelationID, Value: []byte(cID)})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
