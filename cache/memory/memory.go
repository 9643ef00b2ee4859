package memory

import (
	"context"
	"sync"

	"github.com/ragforge/llminvoke/cache"
)

// MemoryCache implements cache.Cache with an in-process map. Useful for
// tests and single-run pipelines where persistence is not needed.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
}

var _ cache.Cache = (*MemoryCache)(nil)

// New creates an empty MemoryCache
func New() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cache.Entry),
	}
}

// Has reports whether key is present
func (c *MemoryCache) Has(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok, nil
}

// Get returns the stored value
func (c *MemoryCache) Get(ctx context.Context, key string) (any, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return entry.Result, true, nil
}

// Set stores value under key
func (c *MemoryCache) Set(ctx context.Context, key string, value any, debug map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cache.Entry{Result: value, Debug: debug}
	return nil
}

// Len returns the number of entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
