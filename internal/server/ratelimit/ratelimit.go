// Package ratelimit caps how often a magic code can be requested for one
// email address.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Allow consumes one unit for subject and returns common.ErrRateLimited
	// once the window's allowance is spent.
	Allow(ctx context.Context, subject string) error
}

// Noop never limits. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) error { return nil }

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

const defaultPrefix = "clipboard:send_code"

// RedisLimiter is a fixed-window counter shared by every server instance.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.Scripter, prefix string, limit int, window time.Duration) *RedisLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (r *RedisLimiter) Allow(ctx context.Context, subject string) error {
	if r == nil || r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	windowMs := r.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := r.prefix + ":" + subject
	raw, err := fixedWindowScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return fmt.Errorf("rate limiter: unexpected response shape %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return fmt.Errorf("rate limiter: unexpected count type %T", values[0])
	}
	ttl, _ := values[1].(int64)

	if count > int64(r.limit) {
		return fmt.Errorf("%w: retry in %s", common.ErrRateLimited, (time.Duration(ttl) * time.Millisecond).Round(time.Second))
	}
	return nil
}
