package location

import (
	"sync"
	"time"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// Cache is a TTL-bounded, process-local cache of resolved locations keyed by
// normalized query. It is advisory only: a miss (or expired entry) simply
// triggers re-resolution. Last writer wins on a given key.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry

	ttl time.Duration
	now func() time.Time
}

type cacheEntry struct {
	locations  []sensor.Location
	resolvedAt time.Time
}

// NewCache creates a cache with the given TTL. The clock is injectable so
// tests can expire entries deterministically.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached locations for key. Entries older than the TTL are
// treated as absent.
func (c *Cache) Get(key string) ([]sensor.Location, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.resolvedAt) >= c.ttl {
		return nil, false
	}
	return e.locations, true
}

// Put stores locations under key with the current timestamp.
func (c *Cache) Put(key string, locations []sensor.Location) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{locations: locations, resolvedAt: c.now()}
	c.mu.Unlock()
}
