package idempotency

import (
	"context"
	"sync"
	"time"
)

type clocker interface {
	Now() time.Time
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// Memory keeps operation state in process. Use it for single replica setups.
type Memory struct {
	clock clocker

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemory returns a process local Idempotency.
func NewMemory(clock clocker) *Memory {
	return &Memory{clock: clock, entries: make(map[string]memoryEntry)}
}

// Exec runs fn unless key already has a recorded state.
func (m *Memory) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	return exec(ctx, m, key, fn, opts...)
}

func (m *Memory) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateError, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}

	if e, ok := m.entries[key]; ok {
		return e.state, nil
	}

	m.entries[key] = memoryEntry{state: StateInProgress, expiresAt: now.Add(lockDuration)}

	return StateNone, nil
}

func (m *Memory) Mark(ctx context.Context, key string, state State, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{state: state, expiresAt: m.clock.Now().Add(ttl)}

	return nil
}
