package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Ensure FetchCache implements the interface.
var _ driven.FetchCache = (*FetchCache)(nil)

// FetchCache is an in-memory implementation of driven.FetchCache for
// testing. Entries never expire.
type FetchCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewFetchCache creates a new in-memory fetch cache.
func NewFetchCache() *FetchCache {
	return &FetchCache{
		entries: make(map[string]string),
	}
}

// Get returns the cached content for a URL, if present.
func (c *FetchCache) Get(ctx context.Context, url string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	content, ok := c.entries[url]
	return content, ok, nil
}

// Put stores content for a URL, replacing any previous entry.
func (c *FetchCache) Put(ctx context.Context, url, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = content
	return nil
}

// Len returns the number of cached pages.
func (c *FetchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
