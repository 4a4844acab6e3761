package email

import (
	"context"
	"strings"
	"testing"
	"time"

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

func TestMail_SendOTP(t *testing.T) {
	// Arrange
	client := &captureMail{}
	m := New(client, clock.NewManual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)), instrument.NewNoop())

	// Act
	err := m.SendOTP(context.Background(), "a@b.com", "004217", 5*time.Minute)

	// Assert
	if err != nil {
		t.Fatalf("SendOTP() error = %v", err)
	}
	if len(client.msgs) != 1 {
		t.Fatalf("sent %d messages", len(client.msgs))
	}
	msg := client.msgs[0]
	if msg.Subject != SubjectOTP || msg.To[0] != "a@b.com" {
		t.Fatalf("message = %+v", msg)
	}
	for _, want := range []string{"004217", "5 minutes", "2026"} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Fatalf("html body lacks %q", want)
		}
	}
	if !strings.Contains(msg.TextBody, "004217") {
		t.Fatalf("text body = %q", msg.TextBody)
	}
}
