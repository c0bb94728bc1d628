// Package cache stores rendered artifacts and resolved layouts.
//
// Backends:
//   - [NullCache]: stores nothing (--no-cache)
//   - [MemoryCache]: process-local map, used by the HTTP server when no
//     Redis address is configured
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// Keys are produced by a [Keyer] so that every entry point derives the
// same key from the same scene and options.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get returns (nil, false, nil) on a miss. A ttl of zero means the entry
// does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// MemoryCache keeps entries in a map. Expired entries are dropped lazily on
// access.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = newEntry(data, ttl, c.now())
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, including expired ones not
// yet dropped.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close implements Cache.
func (c *MemoryCache) Close() error { return nil }

// cacheEntry wraps cached data with its expiry.
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newEntry(data []byte, ttl time.Duration, now time.Time) cacheEntry {
	e := cacheEntry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

var (
	_ Cache = NullCache{}
	_ Cache = (*MemoryCache)(nil)
)
