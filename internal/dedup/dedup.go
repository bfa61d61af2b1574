// Package dedup provides an in-memory TTL cache that suppresses repeated
// like/view actions from the same identity.
//
// The cache maps a dedup key ("{identity}:{contentID}") to the wall-clock time
// of the last accepted action. A key with a live entry is suppressed until the
// TTL window elapses. Stale entries are purged opportunistically so memory is
// bounded by recent traffic rather than total history.
package dedup

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is a concurrency-safe key-to-timestamp dedup map.
// The zero value is not usable; use NewCache.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	sweepAge time.Duration
	entries  map[string]time.Time
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the cache's time source. Used by tests to advance time
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a dedup cache. ttl is the suppression window; sweepAge is
// how old an entry must be before a sweep removes it. sweepAge below ttl is
// raised to ttl so live entries are never swept.
func NewCache(ttl, sweepAge time.Duration, opts ...Option) *Cache {
	if sweepAge < ttl {
		slog.Warn("dedup.NewCache: sweep age below TTL, raising to TTL", "ttl", ttl, "sweep_age", sweepAge)
		sweepAge = ttl
	}
	c := &Cache{
		ttl:      ttl,
		sweepAge: sweepAge,
		entries:  make(map[string]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAndRecord reports whether the key may act now, and if so records the
// action. The read-compare-write sequence runs under a single critical section
// so two concurrent first-time requests for the same key cannot both be
// accepted. A suppressed check does not refresh the entry's timestamp; only
// accepted actions extend the window.
func (c *Cache) CheckAndRecord(key string) bool {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if at, ok := c.entries[key]; ok && now.Sub(at) < c.ttl {
		return false
	}
	c.entries[key] = now
	// Sweeping only on the accepting branch keeps suppressed checks O(1) and
	// still cleans the map exactly when it grows.
	c.sweepLocked(now)
	return true
}

// Sweep removes every entry older than the sweep age. CheckAndRecord invokes
// it automatically; callers only need it for explicit maintenance.
func (c *Cache) Sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(now)
}

// sweepLocked must be called with c.mu held.
func (c *Cache) sweepLocked(now time.Time) {
	for key, at := range c.entries {
		if now.Sub(at) > c.sweepAge {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of entries currently held, live or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
