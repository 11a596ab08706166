package app

import (
	"sync"
	"time"
)

// slidingLimiter counts events per key over a sliding window.
// A non-positive limit disables limiting.
type slidingLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
}

func newSlidingLimiter(limit int, interval time.Duration) *slidingLimiter {
	return &slidingLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (l *slidingLimiter) Allow(key string, now time.Time) bool {
	if l.limit <= 0 || l.interval <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := now.Add(-l.interval)
	attempts := l.history[key]

	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= l.limit {
		l.history[key] = fresh
		return false
	}
	l.history[key] = append(fresh, now)
	return true
}

// Forget drops a key's history, e.g. when its member leaves.
func (l *slidingLimiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, key)
}
