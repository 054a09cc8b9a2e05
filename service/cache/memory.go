package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

const defaultMemoryCacheSize = 256

// MemoryCache is an in-process LRU read cache keyed by resource name. It
// doubles as an Invalidator so the pipeline can drop its entries after
// terminal job states.
type MemoryCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// NewMemoryCache returns a cache holding up to size entries
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = defaultMemoryCacheSize
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: l}, nil
}

// Get returns the cached value for key, if any
func (m *MemoryCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Get(key)
}

// Set stores a value under key
func (m *MemoryCache) Set(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Add(key, value)
}

// Invalidate implements Invalidator
func (m *MemoryCache) Invalidate(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		m.lru.Remove(key)
	}
	return nil
}
