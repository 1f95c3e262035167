// Package images fetches, decodes and caches the small bitmaps shown
// inline in the timeline, such as custom emoji and avatars.
package images

import (
	"image"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded images kept in memory.
const DefaultCacheSize = 256

// Cache is a bounded LRU of decoded images keyed by URL. It is safe for
// concurrent use.
type Cache struct {
	lru *lru.Cache[string, image.Image]
}

// NewCache creates a cache holding at most size images.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Get returns the image stored for url.
func (c *Cache) Get(url string) (image.Image, bool) {
	return c.lru.Get(url)
}

// Add stores img for url. Adding a URL that is already cached keeps the
// existing image.
func (c *Cache) Add(url string, img image.Image) {
	c.lru.ContainsOrAdd(url, img)
}

// Len returns the number of cached images.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge empties the cache.
func (c *Cache) Purge() { c.lru.Purge() }
