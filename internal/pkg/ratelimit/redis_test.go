package ratelimit

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedis(t *testing.T) *goredis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opt, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	rdb := goredis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestRedis_FixedWindow(t *testing.T) {
	// Arrange
	rdb := newRedis(t)
	lim := NewRedis(rdb, clock.New(), Policies{ClassSend: {Limit: 2, Window: 500 * time.Millisecond}}, "test:")
	ctx := context.Background()

	// Act
	first, err := lim.Admit(ctx, "otp_key", ClassSend)
	if err != nil {
		t.Fatalf("Admit() error = %v", err)
	}
	second, _ := lim.Admit(ctx, "otp_key", ClassSend)
	third, _ := lim.Admit(ctx, "otp_key", ClassSend)

	time.Sleep(600 * time.Millisecond)
	afterReset, _ := lim.Admit(ctx, "otp_key", ClassSend)

	// Assert
	if !first.Allowed || !second.Allowed {
		t.Fatalf("first two calls must pass: %+v %+v", first, second)
	}
	if third.Allowed {
		t.Fatalf("third call admitted: %+v", third)
	}
	if !afterReset.Allowed || afterReset.Remaining != 1 {
		t.Fatalf("after reset = %+v", afterReset)
	}

	keys, err := rdb.Keys(ctx, "test:send:*").Result()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] == "test:send:otp_key" {
		t.Fatalf("raw key must not be stored: %v", keys)
	}
}
