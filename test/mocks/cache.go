// Package mocks provides shared test doubles.
package mocks

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory cache double that records operations.
type MockCache struct {
	mu      sync.Mutex
	data    map[string]string
	Sets    int
	Gets    int
	Dels    int
	Deleted []string
}

// NewMockCache creates an empty mock cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

// Get returns the cached value, "" on miss.
func (c *MockCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	return c.data[key], nil
}

// Set stores a value. TTL is ignored.
func (c *MockCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	c.data[key] = value
	return nil
}

// Del removes keys and records them.
func (c *MockCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Dels++
	for _, key := range keys {
		delete(c.data, key)
		c.Deleted = append(c.Deleted, key)
	}
	return nil
}

// Close is a no-op.
func (c *MockCache) Close() error { return nil }

// Has reports whether a key is currently cached.
func (c *MockCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
