// Package memory provides in-process implementations of the domain cache
// interfaces. They are the defaults when Redis is not configured.
package memory

import (
	"sync"
	"time"
)

// Options configures a TTLCache.
type Options struct {
	TTL time.Duration
	// CleanupInterval is how often expired entries are swept. Zero disables
	// the janitor; expired entries are then only dropped on access.
	CleanupInterval time.Duration
	Now             func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a map whose entries expire a fixed duration after they are
// written. It is safe for concurrent use. Call Close to stop the janitor.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
	ttl   time.Duration
	now   func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewTTLCache creates a cache and starts its janitor when configured.
func NewTTLCache[V any](opts Options) *TTLCache[V] {
	c := &TTLCache[V]{
		items: make(map[string]entry[V]),
		ttl:   opts.TTL,
		now:   opts.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.CleanupInterval > 0 {
		go c.janitor(opts.CleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

// Get returns the live value for key.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.items[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry and resetting
// its expiry.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes key.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet swept.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Sweep drops every expired entry and returns how many were removed.
func (c *TTLCache[V]) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Close stops the janitor and waits for it to exit. It is idempotent.
func (c *TTLCache[V]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *TTLCache[V]) janitor(every time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}
