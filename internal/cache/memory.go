package cache

import (
	"bytes"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds page bodies for the lifetime of one run. Values are
// copied in and out so a caller mutating its slice cannot corrupt a page
// another scale is about to match against.
type MemoryCache struct {
	pages *gocache.Cache
}

// NewMemoryCache creates a memory cache; expired pages are swept every cleanupInterval
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{pages: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := c.pages.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return bytes.Clone(body), true
}

// Set stores a page. A zero ttl uses the default; a negative ttl never expires.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = gocache.DefaultExpiration
	case ttl < 0:
		ttl = gocache.NoExpiration
	}
	c.pages.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.pages.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.pages.Flush()
	return nil
}
