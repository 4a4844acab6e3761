package ratelimit

import (
	"context"
	"sync"
	"time"
)

type clocker interface {
	Now() time.Time
}

type window struct {
	mu    sync.Mutex
	start time.Time
	count int64
	dead  bool
}

// Memory is a process-local Limiter. Each key has its own mutex, so callers
// with different keys never wait on each other beyond the map lookup.
type Memory struct {
	clock    clocker
	policies Policies

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewMemory returns an in-memory Limiter.
func NewMemory(clock clocker, policies Policies) *Memory {
	return &Memory{
		clock:     clock,
		policies:  policies,
		windows:   make(map[string]*window),
		lastSweep: clock.Now(),
	}
}

// Admit implements Limiter.
func (m *Memory) Admit(ctx context.Context, key string, class Class) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	policy, err := m.policies.lookup(class)
	if err != nil {
		return Decision{}, err
	}

	now := m.clock.Now()
	k := storageKey("", class, key)

	w := m.window(k, now)
	w.mu.Lock()
	for w.dead {
		w.mu.Unlock()
		w = m.window(k, now)
		w.mu.Lock()
	}
	defer w.mu.Unlock()

	if w.count == 0 || !now.Before(w.start.Add(policy.Window)) {
		w.start = now
		w.count = 0
	}
	w.count++

	return decide(w.count, policy, w.start.Add(policy.Window)), nil
}

func (m *Memory) window(k string, now time.Time) *window {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	w, ok := m.windows[k]
	if !ok {
		w = &window{}
		m.windows[k] = w
	}

	return w
}

// sweep drops windows that ended at least one longest window ago.
// Must be called with m.mu held.
func (m *Memory) sweep(now time.Time) {
	var longest time.Duration
	for _, p := range m.policies {
		longest = max(longest, p.Window)
	}
	if now.Sub(m.lastSweep) < longest {
		return
	}
	m.lastSweep = now

	for k, w := range m.windows {
		if !w.mu.TryLock() {
			continue
		}
		if now.Sub(w.start) >= 2*longest {
			w.dead = true
			delete(m.windows, k)
		}
		w.mu.Unlock()
	}
}
