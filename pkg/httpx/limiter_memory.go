package httpx

import (
	"context"
	"slices"
	"sync"
	"time"
)

const (
	// DefaultSweepInterval is the minimum gap between expired-entry sweeps.
	DefaultSweepInterval = time.Minute
	// DefaultMaxEntries bounds the number of tracked keys after a sweep.
	DefaultMaxEntries = 100_000
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter is an in-process Limiter. State is lost on restart and
// not shared between replicas; use RedisLimiter for that.
type FixedWindowLimiter struct {
	mu        sync.Mutex
	entries   map[string]*windowEntry
	lastSweep time.Time

	sweepInterval time.Duration
	maxEntries    int
	now           func() time.Time
}

var _ Limiter = (*FixedWindowLimiter)(nil)

// LimiterOption configures a FixedWindowLimiter.
type LimiterOption func(*FixedWindowLimiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *FixedWindowLimiter) { l.now = now }
}

// WithMaxEntries overrides the post-sweep key cap.
func WithMaxEntries(n int) LimiterOption {
	return func(l *FixedWindowLimiter) { l.maxEntries = n }
}

// WithSweepInterval overrides how often expired entries are swept.
func WithSweepInterval(d time.Duration) LimiterOption {
	return func(l *FixedWindowLimiter) { l.sweepInterval = d }
}

// NewFixedWindowLimiter creates an empty in-memory limiter.
func NewFixedWindowLimiter(opts ...LimiterOption) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		entries:       make(map[string]*windowEntry),
		sweepInterval: DefaultSweepInterval,
		maxEntries:    DefaultMaxEntries,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// Check records one event for key and reports whether it fits in the window.
func (l *FixedWindowLimiter) Check(_ context.Context, key string, limit int, window time.Duration) RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.sweepInterval {
		l.sweep(now)
	}

	e, ok := l.entries[key]
	if !ok || e.resetAt.Before(now) {
		e = &windowEntry{count: 1, resetAt: now.Add(window)}
		l.entries[key] = e
		return RateLimitResult{Allowed: true, Remaining: max(limit-1, 0), ResetAt: e.resetAt}
	}

	e.count++
	if e.count > limit {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}
	return RateLimitResult{Allowed: true, Remaining: limit - e.count, ResetAt: e.resetAt}
}

// Len reports how many keys are tracked.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops expired windows and, if still over the cap, the oldest half
// by reset time. Caller holds l.mu.
func (l *FixedWindowLimiter) sweep(now time.Time) {
	l.lastSweep = now

	for key, e := range l.entries {
		if e.resetAt.Before(now) {
			delete(l.entries, key)
		}
	}

	if len(l.entries) <= l.maxEntries {
		return
	}

	keys := make([]string, 0, len(l.entries))
	for key := range l.entries {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return l.entries[a].resetAt.Compare(l.entries[b].resetAt)
	})
	for _, key := range keys[:len(keys)/2] {
		delete(l.entries, key)
	}
}
