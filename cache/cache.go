// Package cache provides a small read-through cache used to avoid
// repeated datastore lookups for hot records such as registered xpubs.
package cache

import (
	"sync"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key, or nil if absent or expired.
	Get(key string) []byte

	// Set stores value under key. A zero ttl means the entry never
	// expires.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key if present.
	Delete(key string)
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process Cache backed by a map. Expired entries
// are dropped lazily on access and swept on Set once the map grows past
// sweepThreshold.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swapped out in tests.
	now func() time.Time
}

const sweepThreshold = 4096

// Compile-time interface check.
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(key string) []byte {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.Delete(key)
		return nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out
}

func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	if len(c.entries) >= sweepThreshold {
		c.sweepLocked()
	}
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// sweepLocked drops all expired entries. Caller holds mu.
func (c *MemoryCache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
