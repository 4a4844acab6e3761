package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/otp/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/shared/event"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type capturePublisher struct {
	subject string
	msg     messaging.OutgoingMessage
}

func (c *capturePublisher) Publish(_ context.Context, subject string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	c.subject, c.msg = subject, msg
	return messaging.PublishResult{Subject: subject}, nil
}

func TestMessaging_PublishUsage(t *testing.T) {
	// Arrange
	pub := &capturePublisher{}
	m := NewMessaging(pub, fixedID("ev-1"), instrument.NewNoop())
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// Act
	err := m.PublishUsage(context.Background(), usecase.UsageEvent{
		UserID:     "u-1",
		Endpoint:   usecase.EndpointVerify,
		Success:    false,
		Email:      "a@b.com",
		Latency:    42 * time.Millisecond,
		OccurredAt: at,
	})

	// Assert
	if err != nil {
		t.Fatalf("PublishUsage() error = %v", err)
	}
	if pub.subject != event.OTPUsageDestination {
		t.Fatalf("subject = %q", pub.subject)
	}

	var got event.OTPUsageMessage
	if err := json.Unmarshal(pub.msg.Body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := event.OTPUsageMessage{
		ID: "ev-1", UserID: "u-1", Endpoint: "/api/otp/verify", Status: event.UsageStatusFailed,
		Email: "a@b.com", LatencyMS: 42, OccurredAt: at,
	}
	if got != want {
		t.Fatalf("message = %+v, want %+v", got, want)
	}
}
