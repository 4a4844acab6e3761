package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/otpify/internal/pkg/config"
	"github.com/shandysiswandi/otpify/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/shared/event"
)

// RegisterMQConsumer starts the consumers listed in
// modules.dashboard.consumer_names; an empty list starts all of them.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.dashboard.consumer_names")

	consumers := []struct {
		name       string
		topic      string
		queueGroup string
		handler    messaging.Handler
	}{
		{
			name:       event.OTPUsageConsumerDashboard,
			topic:      event.OTPUsageDestination,
			queueGroup: event.OTPUsageConsumerDashboard,
			handler:    mqHandler.OTPUsage,
		},
	}

	for _, consumer := range consumers {
		if len(enabled) > 0 && !slices.Contains(enabled, consumer.name) {
			continue
		}

		routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(pCtx, "running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithQueueGroup(consumer.queueGroup),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(10),
			)
		})
	}
}
