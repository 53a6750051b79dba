// Package ratelimit throttles requests per key (the client IP for the auth
// routes). Two implementations are provided: an in-process token bucket and
// a Redis fixed window shared by every API instance.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
