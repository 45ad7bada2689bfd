package httpx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// fixedWindowScript increments the counter and starts the window on the
// first hit. A key that somehow lost its TTL gets one again.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter is a Limiter whose windows live in Redis, so every replica
// sees the same counts.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter storing keys under prefix.
func NewRedisLimiter(client redis.UniversalClient, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

// Check records one event for key. Redis failures fail open.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) RateLimitResult {
	now := l.now()

	vals, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 2 {
		slogx.FromContext(ctx).Warn("rate limit: redis unavailable, allowing request",
			"key", key,
			"err", err,
		)
		return RateLimitResult{Allowed: true, Remaining: limit, ResetAt: now.Add(window)}
	}

	count := int(vals[0])
	resetAt := now.Add(time.Duration(vals[1]) * time.Millisecond)
	if count > limit {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}
	return RateLimitResult{Allowed: true, Remaining: limit - count, ResetAt: resetAt}
}
