package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a per-key token bucket: max requests may burst, after which
// tokens refill evenly over window. State lives in this process only.
type Memory struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	max      int
	window   time.Duration
	every    rate.Limit
	now      func() time.Time
}

// NewMemory creates a limiter allowing max requests per window and key.
func NewMemory(max int, window time.Duration) *Memory {
	return &Memory{
		visitors: make(map[string]*visitor),
		max:      max,
		window:   window,
		every:    rate.Every(window / time.Duration(max)),
		now:      time.Now,
	}
}

// Allow implements Limiter. It never returns an error.
func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.every, m.max)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	res := Result{Limit: m.max}
	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		return res, nil
	}

	res.Allowed = true
	if remaining := int(v.limiter.TokensAt(now)); remaining > 0 {
		res.Remaining = remaining
	}
	return res, nil
}

// Cleanup forgets keys idle for longer than one window, which by then have
// a full bucket again. It returns how many were removed.
func (m *Memory) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	removed := 0
	for key, v := range m.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(m.visitors, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (m *Memory) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}
