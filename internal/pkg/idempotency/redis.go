package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces idempotency keys.
const DefaultRedisPrefix = "otpify:idempotency:"

// StateTracker keeps operation state in Redis so every replica sees it.
type StateTracker struct {
	client redis.Cmdable
	prefix string
}

// New returns a Redis backed Idempotency.
func New(client redis.Cmdable) *StateTracker {
	return &StateTracker{
		client: client,
		prefix: DefaultRedisPrefix,
	}
}

// Exec runs fn unless key already has a recorded state.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	return exec(ctx, s, key, fn, opts...)
}

// Acquire tries to start an operation.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
	if err != nil {
		return StateError, err
	}
	if acquired {
		return StateNone, nil
	}

	result, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		acquired, err = s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}
		return StateError, ErrInvalidState
	}
	if err != nil {
		return StateError, err
	}

	return parseState(result)
}

// Mark records the final state of key.
func (s *StateTracker) Mark(ctx context.Context, key string, state State, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, state.String(), ttl).Err()
}
