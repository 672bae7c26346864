// Package cache provides TTL-bounded stores for fetched market data records.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a record is served before it is refetched.
const DefaultTTL = 5 * time.Minute

type entry struct {
	capturedAt time.Time
	payload    []byte
}

// MemoryCache keeps records in process memory.
// Expired entries are treated as absent but are not evicted; the key space is
// small and every entry is superseded on the next successful fetch.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// MemoryOption customises a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMemoryClock replaces the clock used to stamp and expire entries.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// NewMemoryCache creates an in-memory cache. If ttl is 0, it defaults to 5 minutes.
func NewMemoryCache(ttl time.Duration, opts ...MemoryOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload stored under key if it is younger than the TTL.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.capturedAt) >= c.ttl {
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under key, replacing any previous entry.
func (c *MemoryCache) Put(_ context.Context, key string, payload []byte) {
	c.mu.Lock()
	c.entries[key] = entry{capturedAt: c.now(), payload: payload}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
