package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the window counter and arms its expiry on the
// first hit. It returns the new count and the window's remaining ms.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// DefaultRedisPrefix namespaces limiter keys.
const DefaultRedisPrefix = "otpify:ratelimit:"

// Redis is a Limiter shared by every replica. Windows expire in Redis, so
// the reset instant is owned by the Redis clock.
type Redis struct {
	rdb      redis.Scripter
	clock    clocker
	policies Policies
	prefix   string
}

// NewRedis returns a Redis-backed Limiter.
func NewRedis(rdb redis.Scripter, clock clocker, policies Policies, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &Redis{rdb: rdb, clock: clock, policies: policies, prefix: prefix}
}

// Admit implements Limiter.
func (r *Redis) Admit(ctx context.Context, key string, class Class) (Decision, error) {
	policy, err := r.policies.lookup(class)
	if err != nil {
		return Decision{}, err
	}

	res, err := fixedWindowScript.Run(ctx, r.rdb,
		[]string{storageKey(r.prefix, class, key)},
		policy.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	resetAt := r.clock.Now().Add(time.Duration(res[1]) * time.Millisecond)

	return decide(res[0], policy, resetAt), nil
}
