package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type payload struct {
	Email string `json:"email"`
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

// joined counts the consumers attached to subject across all groups.
func joined(m *Memory, subject string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, g := range m.groups[subject] {
		n += g.refs
	}
	return n
}

// startConsumer returns once this consumer has joined its group.
func startConsumer(t *testing.T, m *Memory, subject string, h Handler, opts ...ConsumeOption) {
	t.Helper()

	before := joined(m, subject)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Consume(ctx, subject, h, opts...)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitFor(t, func() bool { return joined(m, subject) > before })
}

func TestMemory_PublishJSONRoundTrip(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	got := make(chan payload, 1)
	startConsumer(t, m, "user.forgot_password", func(_ context.Context, msg Message) error {
		p, err := DecodeJSON[payload](msg)
		if err != nil {
			return err
		}
		got <- p
		return nil
	}, WithAutoAck(true))

	// Act
	err := PublishJSON(context.Background(), m, "user.forgot_password", payload{Email: "a@b.com"})

	// Assert
	if err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}
	select {
	case p := <-got:
		if p.Email != "a@b.com" {
			t.Fatalf("payload = %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("message not delivered")
	}
}

func TestMemory_QueueGroupDeliversOnce(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var grouped, solo atomic.Int32
	countInto := func(c *atomic.Int32) Handler {
		return func(context.Context, Message) error {
			c.Add(1)
			return nil
		}
	}
	startConsumer(t, m, "otp.usage", countInto(&grouped), WithQueueGroup("dashboard"))
	startConsumer(t, m, "otp.usage", countInto(&grouped), WithQueueGroup("dashboard"))
	startConsumer(t, m, "otp.usage", countInto(&solo))
	m.mu.RLock()
	groups := len(m.groups["otp.usage"])
	m.mu.RUnlock()
	if groups != 2 || joined(m, "otp.usage") != 3 {
		t.Fatalf("groups = %d consumers = %d, want 2 and 3", groups, joined(m, "otp.usage"))
	}

	// Act
	for range 10 {
		if _, err := m.Publish(context.Background(), "otp.usage", OutgoingMessage{Body: []byte("{}")}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	// Assert
	waitFor(t, func() bool { return grouped.Load() == 10 && solo.Load() == 10 })
}

func TestMemory_HandlerPanicDoesNotStopConsumer(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var mu sync.Mutex
	var seen []string
	startConsumer(t, m, "s", func(_ context.Context, msg Message) error {
		if string(msg.Body()) == "boom" {
			panic("boom")
		}
		mu.Lock()
		seen = append(seen, string(msg.Body()))
		mu.Unlock()
		return nil
	}, WithAutoAck(true))

	// Act
	_, _ = m.Publish(context.Background(), "s", OutgoingMessage{Body: []byte("boom")})
	_, _ = m.Publish(context.Background(), "s", OutgoingMessage{Body: []byte("ok")})

	// Assert
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0] == "ok"
	})
}

func TestMemory_Validation(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	ctx := context.Background()

	if _, err := m.Publish(ctx, "", OutgoingMessage{}); !errors.Is(err, ErrSubjectRequired) {
		t.Fatalf("empty subject: %v", err)
	}
	if _, err := m.Publish(ctx, "s", OutgoingMessage{Delay: time.Second}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("delay: %v", err)
	}
	if err := m.Consume(ctx, "s", nil); !errors.Is(err, ErrHandlerRequired) {
		t.Fatalf("nil handler: %v", err)
	}

	_ = m.Close()
	if _, err := m.Publish(ctx, "s", OutgoingMessage{}); err == nil {
		t.Fatalf("publish after close should fail")
	}
}

func TestNewFromDriver(t *testing.T) {
	if _, err := NewFromDriver("kafka", FactoryOptions{}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("unknown driver: %v", err)
	}

	m, err := NewFromDriver("memory", FactoryOptions{})
	if err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	_ = m.Close()

	if _, err := NewFromDriver("nats", FactoryOptions{}); !errors.Is(err, ErrNATSURLRequired) {
		t.Fatalf("nats without url: %v", err)
	}
}
