package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window counter keyed by client (usually an IP address).
// Keys with no hits left in the window are swept at most once per window.
type Limiter struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	window    time.Duration
	maxHits   int
	now       func() time.Time
	lastSweep time.Time
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it fits in the window.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// Reserve is Allow plus, when the hit is rejected, how long until the oldest hit leaves the window.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweepLocked(windowStart)
		l.lastSweep = now
	}

	hits := l.hits[key]
	valid := hits[:0]
	for _, hit := range hits {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}

	if len(valid) >= l.maxHits {
		if len(valid) == 0 {
			delete(l.hits, key)
			return false, l.window
		}
		l.hits[key] = valid
		return false, valid[0].Sub(windowStart)
	}

	l.hits[key] = append(valid, now)
	return true, 0
}

// Len is the number of keys currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func (l *Limiter) sweepLocked(windowStart time.Time) {
	for key, hits := range l.hits {
		// hits are appended in time order
		if len(hits) == 0 || !hits[len(hits)-1].After(windowStart) {
			delete(l.hits, key)
		}
	}
}
