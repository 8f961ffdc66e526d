package gateway

import (
	"errors"
	"sync"
	"time"
)

// errCacheFull is returned when the cache is at capacity and nothing can
// be evicted; the limiter treats it as an internal failure and fails open.
var errCacheFull = errors.New("local counter cache full")

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

// localCounterCache is the in-process fallback counter store: a bounded
// map of fixed-window counters that expire 60 seconds after their first
// increment. Safe for concurrent use.
type localCounterCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*counterEntry
	nowFunc  func() time.Time
}

func newLocalCounterCache(capacity int) *localCounterCache {
	return &localCounterCache{
		capacity: capacity,
		entries:  make(map[string]*counterEntry),
		nowFunc:  time.Now,
	}
}

// Incr bumps the counter for key and returns the post-increment count.
// The first increment starts the window.
func (c *localCounterCache) Incr(key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()

	entry, ok := c.entries[key]
	if ok && now.After(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}

	if !ok {
		if len(c.entries) >= c.capacity {
			c.evictExpired(now)
		}
		if len(c.entries) >= c.capacity {
			return 0, errCacheFull
		}
		entry = &counterEntry{expiresAt: now.Add(window)}
		c.entries[key] = entry
	}

	entry.count++
	return entry.count, nil
}

func (c *localCounterCache) evictExpired(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *localCounterCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
