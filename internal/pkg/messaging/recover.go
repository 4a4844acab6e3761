package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/otpify/internal/pkg/stacktrace"
)

type respondedMessage interface {
	Message
	Nackable
	hasResponded() bool
}

// dispatch runs handler for msg and applies auto-ack unless the handler
// already acked or nacked.
func dispatch(ctx context.Context, kind string, msg respondedMessage, handler Handler, autoAck bool) {
	herr := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, msg)
	})
	if herr != nil {
		slog.WarnContext(ctx, "messaging handler failed", "kind", kind, "subject", msg.Subject(), "error", herr)
	}
	if msg.hasResponded() || !autoAck {
		return
	}

	var err error
	if herr == nil {
		err = msg.Ack(ctx)
	} else {
		err = msg.Nack(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "messaging auto ack failed", "kind", kind, "subject", msg.Subject(), "error", err)
	}
}

func callHandlerWithRecover(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			paths := stacktrace.InternalPaths(stack)
			if len(paths) == 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", string(stack))
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", paths)
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}
