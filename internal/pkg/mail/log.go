package mail

import (
	"context"
	"log/slog"
)

// Log writes messages to slog instead of sending them.
type Log struct {
	defaultFrom string
}

// NewLog returns a Log driver.
func NewLog(from string) *Log {
	return &Log{defaultFrom: from}
}

// Send logs the message at info level.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if len(msg.recipients()) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = l.defaultFrom
	}

	slog.InfoContext(ctx, "mail delivered to log",
		"from", from,
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.TextBody,
	)

	return nil
}

// Close implements io.Closer.
func (l *Log) Close() error {
	return nil
}
