// Package cache is a small TTL cache over patrickmn/go-cache, used to avoid
// refetching release listings within one process.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/fwmap/pkg/constants"
)

// Cache wraps go-cache.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache with the given default TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// NewDefault creates a cache with the release listing TTL.
func NewDefault() *Cache {
	return New(constants.ReleaseCacheTTL, constants.CacheCleanupInterval)
}

// Get returns a cached value.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Clear removes every value.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of unexpired and unpurged items.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}
