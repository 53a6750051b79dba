package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript increments the counter for a key and starts its window on the
// first hit, atomically, returning the count and the window's remaining ms.
var windowScript = redis.NewScript(`
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

// Redis is a fixed-window limiter whose counters live in Redis, so every API
// instance shares the same budget per key.
type Redis struct {
	client redis.Scripter
	max    int
	window time.Duration
	prefix string
}

// NewRedis creates a limiter allowing max requests per window and key.
func NewRedis(client redis.Scripter, max int, window time.Duration, prefix string) *Redis {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &Redis{client: client, max: max, window: window, prefix: prefix}
}

// Allow implements Limiter. On a Redis failure the request is allowed and
// the error is returned so the caller can log it.
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	res := Result{Limit: r.max}
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)

	vals, err := windowScript.Run(ctx, r.client, []string{redisKey}, r.window.Milliseconds()).Int64Slice()
	if err != nil {
		res.Allowed = true
		return res, fmt.Errorf("redis rate limit: %w", err)
	}
	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond

	if count > int64(r.max) {
		res.RetryAfter = ttl
		return res, nil
	}
	res.Allowed = true
	res.Remaining = r.max - int(count)
	return res, nil
}
