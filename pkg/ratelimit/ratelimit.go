package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Rate defines the rate limit configuration
type Rate struct {
	Requests int
	Window   time.Duration
}

// Info contains information about the current rate limit status
type Info struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter defines the interface for rate limiting implementations
type Limiter interface {
	Allow(ctx context.Context, key string, limit Rate) (bool, Info)
	Reset(ctx context.Context, key string) error
}

func decide(count int, limit Rate, now time.Time) (bool, Info) {
	remaining := limit.Requests - count - 1
	allowed := count < limit.Requests
	if remaining < 0 {
		remaining = 0
	}
	return allowed, Info{Limit: limit.Requests, Remaining: remaining, Reset: now.Add(limit.Window)}
}

// MemoryLimiter is a process-local sliding window limiter used without Redis.
type MemoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryLimiter creates an empty limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{hits: make(map[string][]time.Time), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit Rate) (bool, Info) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-limit.Window)
	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	count := len(kept)
	l.hits[key] = append(kept, now)
	return decide(count, limit, now)
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.hits, key)
	l.mu.Unlock()
	return nil
}
