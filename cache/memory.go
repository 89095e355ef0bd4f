package cache

import (
	"context"
	"sync"
	"time"
)

// cacheEntry holds a cached value with its timestamp.
type cacheEntry struct {
	value     string
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
type InMemoryCache struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	return &InMemoryCache{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
	}
}

func (c *InMemoryCache) expired(e cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.timestamp) > c.ttl
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if now := time.Now(); c.expired(entry, now) {
		c.mu.Lock()
		// A Set may have refreshed the entry since the read lock was dropped
		if cur, ok := c.cache[key]; ok && c.expired(cur, now) {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		value:     value,
		timestamp: time.Now(),
	}
}

// Delete removes key from the cache.
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Count returns the number of live translation entries.
func (c *InMemoryCache) Count(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	n := 0
	for key, entry := range c.cache {
		if isEntryKey(key) && !c.expired(entry, now) {
			n++
		}
	}
	return n
}

// Clear removes all translation entries from the cache.
func (c *InMemoryCache) Clear(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.cache {
		if isEntryKey(key) {
			delete(c.cache, key)
			n++
		}
	}
	return n
}

// Entries returns all non-expired translation entries.
func (c *InMemoryCache) Entries(_ context.Context) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string)
	now := time.Now()

	for key, entry := range c.cache {
		if !isEntryKey(key) || c.expired(entry, now) {
			continue
		}
		result[key] = entry.value
	}

	return result, nil
}

// Close is a no-op.
func (c *InMemoryCache) Close() error { return nil }

var (
	_ Store  = (*InMemoryCache)(nil)
	_ Lister = (*InMemoryCache)(nil)
)
