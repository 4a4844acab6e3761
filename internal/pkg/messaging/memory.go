package messaging

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryConfig configures the in-process driver.
type MemoryConfig struct {
	// Buffer is the per-subscription queue size. Publish blocks when a
	// subscriber queue is full until ctx is done.
	Buffer int
}

// Memory delivers messages to consumers in the same process.
//
// Subscribers sharing a queue group receive each message once between them;
// every other subscriber gets its own copy. Nacked messages are dropped.
type Memory struct {
	buffer int

	mu     sync.RWMutex
	groups map[string][]*memoryGroup
	closed bool
}

type memoryGroup struct {
	name string
	ch   chan *memoryMessage
	refs int
}

// NewMemory returns an in-process Messaging implementation.
func NewMemory(cfg MemoryConfig) *Memory {
	return &Memory{
		buffer: concurrencyOrDefault(cfg.Buffer, 64),
		groups: make(map[string][]*memoryGroup),
	}
}

// Publish implements Publisher.
func (m *Memory) Publish(ctx context.Context, subject string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if subject == "" {
		return PublishResult{}, ErrSubjectRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return PublishResult{}, io.ErrClosedPipe
	}

	now := time.Now()
	for _, g := range m.groups[subject] {
		select {
		case g.ch <- newMemoryMessage(subject, msg, now):
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{Subject: subject, Timestamp: now}, nil
}

// Consume implements Consumer. It blocks until ctx is done.
func (m *Memory) Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return ErrSubjectRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	g, err := m.join(subject, co.queueGroup)
	if err != nil {
		return err
	}
	defer m.leave(subject, g)

	var wg sync.WaitGroup
	for range concurrencyOrDefault(co.concurrency, 1) {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-g.ch:
					if !ok {
						return
					}
					dispatch(ctx, "memory", msg, handler, co.autoAck)
				}
			}
		})
	}

	wg.Wait()

	return ctx.Err()
}

func (m *Memory) join(subject, queueGroup string) (*memoryGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}

	if queueGroup != "" {
		for _, g := range m.groups[subject] {
			if g.name == queueGroup {
				g.refs++
				return g, nil
			}
		}
	}

	g := &memoryGroup{name: queueGroup, ch: make(chan *memoryMessage, m.buffer), refs: 1}
	m.groups[subject] = append(m.groups[subject], g)

	return g, nil
}

func (m *Memory) leave(subject string, g *memoryGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g.refs--
	if g.refs > 0 || m.closed {
		return
	}

	groups := m.groups[subject]
	for i, cur := range groups {
		if cur == g {
			m.groups[subject] = append(groups[:i], groups[i+1:]...)
			break
		}
	}
	if len(m.groups[subject]) == 0 {
		delete(m.groups, subject)
	}
	if n := len(g.ch); n > 0 {
		slog.Warn("messaging: dropping undelivered messages", "subject", subject, "count", n)
	}
}

// Close stops all consumers. Messages still queued are dropped.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	for _, groups := range m.groups {
		for _, g := range groups {
			close(g.ch)
		}
	}
	m.groups = map[string][]*memoryGroup{}

	return nil
}

type memoryMessage struct {
	subject    string
	body       []byte
	headers    []Header
	receivedAt time.Time

	responded atomic.Bool
}

func newMemoryMessage(subject string, msg OutgoingMessage, now time.Time) *memoryMessage {
	return &memoryMessage{
		subject:    subject,
		body:       append([]byte(nil), msg.Body...),
		headers:    append([]Header(nil), msg.Headers...),
		receivedAt: now,
	}
}

func (m *memoryMessage) hasResponded() bool { return m.responded.Load() }

func (m *memoryMessage) Body() []byte         { return m.body }
func (m *memoryMessage) Headers() []Header    { return m.headers }
func (m *memoryMessage) Subject() string      { return m.subject }
func (m *memoryMessage) Timestamp() time.Time { return m.receivedAt }

func (m *memoryMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.responded.Store(true)
	return nil
}

func (m *memoryMessage) Nack(ctx context.Context) error {
	return m.Ack(ctx)
}
