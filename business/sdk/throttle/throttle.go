// Package throttle provides a fixed-window request limiter keyed by an
// identity string. Windows reset at fixed boundaries, so a caller bursting
// across a boundary can see up to twice the nominal rate. That trade-off is
// accepted for the simplicity of per-key counters.
package throttle

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Error is returned when a request is rejected. It carries how long the
// caller must wait for the current window to expire.
type Error struct {
	Key        string
	Limit      int
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("rate limit of %d requests exceeded, retry in %s", e.Limit, e.RetryAfter)
}

// RetryAfterSeconds returns the wait rounded up to whole seconds, the format
// the Retry-After header requires.
func (e *Error) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// Config represents information required to construct a limiter.
type Config struct {
	Window time.Duration
	Limit  int
	Now    func() time.Time
}

type bucket struct {
	count   int
	expires time.Time
}

// Limiter maintains a table of fixed-window counters. The zero value is not
// usable; construct with New. Safe for concurrent use.
type Limiter struct {
	window time.Duration
	limit  int
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New constructs a Limiter for use.
func New(cfg Config) *Limiter {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Limiter{
		window:  cfg.Window,
		limit:   cfg.Limit,
		now:     now,
		buckets: make(map[string]*bucket),
	}
}

// Limit returns the configured default limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Check admits or rejects one request for the specified key. A limit of zero
// falls back to the configured default. On rejection a *Error is returned
// carrying the remaining wait; the request must never be silently dropped.
func (l *Limiter) Check(key string, limit int) error {
	if limit <= 0 {
		limit = l.limit
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists || !now.Before(b.expires) {
		l.buckets[key] = &bucket{
			count:   1,
			expires: now.Add(l.window),
		}
		return nil
	}

	b.count++
	if b.count > limit {
		return &Error{
			Key:        key,
			Limit:      limit,
			RetryAfter: b.expires.Sub(now),
		}
	}

	return nil
}

// Sweep removes expired buckets so the table does not grow with key
// cardinality. Intended to run on a timer from the composition root.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if !now.Before(b.expires) {
			delete(l.buckets, key)
		}
	}
}
