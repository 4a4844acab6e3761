package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/notification/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/mail"
)

type captureMail struct {
	msgs []mail.Message
}

func (c *captureMail) Send(_ context.Context, msg mail.Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureMail) Close() error { return nil }

func TestMail_SendPasswordReset(t *testing.T) {
	// Arrange
	client := &captureMail{}
	m := New(client, clock.NewManual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)), instrument.NewNoop())
	link := "http://web.test/reset-password?token=tok-123"

	// Act
	err := m.SendPasswordReset(context.Background(), usecase.PasswordResetMail{
		Email:    "ada@example.com",
		Name:     "Ada",
		Link:     link,
		ValidFor: time.Hour,
	})

	// Assert
	if err != nil {
		t.Fatalf("SendPasswordReset() error = %v", err)
	}
	if len(client.msgs) != 1 {
		t.Fatalf("sent %d messages", len(client.msgs))
	}
	msg := client.msgs[0]
	if msg.Subject != SubjectPasswordReset || msg.To[0] != "ada@example.com" {
		t.Fatalf("message = %+v", msg)
	}
	for _, want := range []string{"Hello Ada", link, "1 hour", "2026"} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Fatalf("html body lacks %q", want)
		}
	}
	if !strings.Contains(msg.TextBody, link) {
		t.Fatalf("text body = %q", msg.TextBody)
	}
}

func TestHumanize(t *testing.T) {
	tests := map[time.Duration]string{
		time.Hour:        "1 hour",
		2 * time.Hour:    "2 hours",
		90 * time.Minute: "90 minutes",
		15 * time.Minute: "15 minutes",
		time.Second:      "1 minute",
	}

	for d, want := range tests {
		if got := humanize(d); got != want {
			t.Fatalf("humanize(%v) = %q, want %q", d, got, want)
		}
	}
}
