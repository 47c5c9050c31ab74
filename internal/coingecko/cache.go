package coingecko

import (
	"sync"
	"time"
)

// ttlCache is a flat TTL cache owned by the client. Stale entries are
// overwritten in place on refresh and never evicted otherwise; unbounded
// growth is accepted because the process is short-lived.
type ttlCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry[T]
}

type cacheEntry[T any] struct {
	fetchedAt time.Time
	payload   T
}

func newTTLCache[T any](ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[T]),
	}
}

// get returns the cached payload if it is younger than the TTL.
// A stale entry is never returned.
func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.fetchedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return entry.payload, true
}

func (c *ttlCache[T]) put(key string, payload T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[T]{fetchedAt: time.Now(), payload: payload}
}
