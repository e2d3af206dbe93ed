package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	count      int64
	ttl        int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal([]interface{}{m.count, m.ttl})
	return cmd
}

func TestRedisOTPRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisOTPRateLimiter
		if ok, _ := l.Allow("user@example.com"); !ok {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisOTPRateLimiter{
			client: &mockRedisEvaler{count: 1},
			window: time.Minute,
			max:    1,
			prefix: "otp:rl:",
		}
		if ok, _ := l.Allow("   "); ok {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{count: 1, ttl: 60}
		l := &redisOTPRateLimiter{
			client: mock,
			window: 2 * time.Minute,
			max:    1,
			prefix: "otp:rl:",
		}
		ok, wait := l.Allow(" User@Example.com ")
		if !ok || wait != 0 {
			t.Fatalf("expected allow without wait, got %v %v", ok, wait)
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "otp:rl:user@example.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisOTPAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny reports remaining ttl", func(t *testing.T) {
		l := &redisOTPRateLimiter{
			client: &mockRedisEvaler{count: 2, ttl: 45},
			window: time.Minute,
			max:    1,
			prefix: "otp:rl:",
		}
		ok, wait := l.Allow("user@example.com")
		if ok {
			t.Fatalf("expected deny when count > max")
		}
		if wait != 45*time.Second {
			t.Fatalf("expected wait 45s, got %v", wait)
		}
	})

	t.Run("deny without ttl falls back to window", func(t *testing.T) {
		l := &redisOTPRateLimiter{
			client: &mockRedisEvaler{count: 5, ttl: -1},
			window: time.Minute,
			max:    1,
			prefix: "otp:rl:",
		}
		if _, wait := l.Allow("user@example.com"); wait != time.Minute {
			t.Fatalf("expected window fallback, got %v", wait)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisOTPRateLimiter{
			client: &mockRedisEvaler{err: errors.New("redis down")},
			window: time.Minute,
			max:    1,
			prefix: "otp:rl:",
		}
		if ok, _ := l.Allow("user@example.com"); !ok {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestMemoryOTPRateLimiterRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewOTPRateLimiter(time.Minute, 1).(*otpRateLimiter)
	l.now = func() time.Time { return now }

	if ok, _ := l.Allow("user@example.com"); !ok {
		t.Fatalf("expected first request allowed")
	}

	now = now.Add(15 * time.Second)
	ok, wait := l.Allow("user@example.com")
	if ok {
		t.Fatalf("expected second request denied")
	}
	if wait != 45*time.Second {
		t.Fatalf("expected wait 45s, got %v", wait)
	}

	now = now.Add(46 * time.Second)
	if ok, _ := l.Allow("user@example.com"); !ok {
		t.Fatalf("expected request allowed after window")
	}
}
