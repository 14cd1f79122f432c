package cache

import (
	"sync"
	"time"
)

// CarrierCache maps carrier ids to display names. Unlike the bounded TTL
// caches it is refreshed wholesale: the carrier set is small enough to fetch
// in one upstream call, so the whole table is replaced at once and reads
// between refreshes are served from the previous snapshot, stale or not.
type CarrierCache struct {
	mu         sync.Mutex
	names      map[int]string
	fetchedAt  time.Time
	refreshing bool
	ttl        time.Duration
	now        func() time.Time
}

// NewCarrierCache creates an empty carrier cache with the given TTL.
func NewCarrierCache(ttl time.Duration) *CarrierCache {
	return &CarrierCache{
		names: make(map[int]string),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Name returns the display name for a carrier id, if known. A stale name is
// still returned; callers kick off a refresh separately.
func (c *CarrierCache) Name(id int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[id]
	return name, ok
}

// Stale reports whether the table has never been loaded or has outlived its
// TTL.
func (c *CarrierCache) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) >= c.ttl
}

// BeginRefresh marks the cache as refreshing and reports whether the caller
// won the right to do so. At most one refresh runs at a time; losers proceed
// with the stale snapshot.
func (c *CarrierCache) BeginRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshing {
		return false
	}
	c.refreshing = true
	return true
}

// CompleteRefresh installs a new carrier table. Called with nil names when
// the refresh failed, which clears the refreshing flag without touching the
// existing snapshot.
func (c *CarrierCache) CompleteRefresh(names map[int]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if names == nil {
		return
	}
	c.names = names
	c.fetchedAt = c.now()
}
