package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownClass is returned for a class without a configured policy.
var ErrUnknownClass = errors.New("ratelimit: unknown class")

// Class names an independently limited operation.
type Class string

// Operation classes limited per API key.
const (
	ClassSend   Class = "send"
	ClassVerify Class = "verify"
)

// Policy is the ceiling for one class.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Policies maps each class to its ceiling.
type Policies map[Class]Policy

// DefaultPolicies are the documented ceilings.
func DefaultPolicies() Policies {
	return Policies{
		ClassSend:   {Limit: 100, Window: time.Hour},
		ClassVerify: {Limit: 1000, Window: time.Hour},
	}
}

func (p Policies) lookup(class Class) (Policy, error) {
	policy, ok := p[class]
	if !ok || policy.Limit <= 0 || policy.Window <= 0 {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	return policy, nil
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window resets, never negative.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	return max(d.ResetAt.Sub(now), 0)
}

func decide(count int64, policy Policy, resetAt time.Time) Decision {
	return Decision{
		Allowed:   count <= int64(policy.Limit),
		Limit:     policy.Limit,
		Remaining: int(max(int64(policy.Limit)-count, 0)),
		ResetAt:   resetAt,
	}
}

// Limiter admits or rejects one call for key in class.
type Limiter interface {
	Admit(ctx context.Context, key string, class Class) (Decision, error)
}

// storageKey hashes the caller key so raw credentials never reach the store.
func storageKey(prefix string, class Class, key string) string {
	sum := sha256.Sum256([]byte(key))
	return prefix + string(class) + ":" + hex.EncodeToString(sum[:16])
}
