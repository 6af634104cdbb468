package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryCache is an in-process cache bounded by entry count. When full,
// the least recently set entry is evicted. It is safe for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]memoryEntry
	order   []string // keys, oldest first
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a cache holding at most limit entries. A limit of 0
// or less means unbounded.
func NewMemoryCache(limit int) *MemoryCache {
	return &MemoryCache{limit: limit, entries: make(map[string]memoryEntry), now: time.Now}
}

// Get retrieves a value. Expired entries are dropped.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(key)
		return nil, false, nil
	}
	return slices.Clone(e.data), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{data: slices.Clone(data)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	c.entries[key] = e
	c.order = append(c.order, key)
	for c.limit > 0 && len(c.order) > c.limit {
		c.remove(c.order[0])
	}
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// dropped.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close does nothing.
func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

var _ Cache = (*MemoryCache)(nil)
