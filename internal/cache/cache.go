// Package cache provides the in-memory TTL caches used on the request path.
// All caches are process-lifetime and per-instance: two runtime instances
// never see each other's entries, and staleness up to the TTL is accepted
// in exchange for latency.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// TTLCache is a capacity-bounded cache with per-entry expiry and FIFO
// eviction. Eviction is strictly insertion-order: reading an entry does not
// promote it. Concurrent lookups for the same cold key are not deduplicated;
// with TTLs this short a duplicate upstream fetch is cheaper than a
// single-flight layer.
type TTLCache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]entry[V]
	order    []K // insertion order, oldest first
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewTTLCache creates a cache holding at most capacity entries for at most
// ttl each.
func NewTTLCache[K comparable, V any](ttl time.Duration, capacity int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		entries:  make(map[K]entry[V]),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.cachedAt) >= c.ttl {
		// Expired entries are left in place for FIFO eviction to reap;
		// removing them here would desync the insertion-order list.
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest-inserted entry if the
// cache is full. Re-setting an existing key refreshes its value and expiry
// but keeps its original position in the eviction order.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, cachedAt: c.now()}
}

// Len returns the number of entries currently stored, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
