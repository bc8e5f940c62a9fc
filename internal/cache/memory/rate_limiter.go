package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

var _ domain.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter creates an empty limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*window), now: time.Now}
}

// Allow admits up to limit calls per key in each window.
func (r *RateLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[key]
	if !ok || now.Sub(w.start) >= win {
		r.evict(now, win)
		r.windows[key] = &window{start: now, count: 1}
		return limit > 0, nil
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// evict drops windows that ended; called with the lock held so the map
// tracks only active clients.
func (r *RateLimiter) evict(now time.Time, win time.Duration) {
	for k, w := range r.windows {
		if now.Sub(w.start) >= win {
			delete(r.windows, k)
		}
	}
}
