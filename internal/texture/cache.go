package texture

import (
	"sync"

	"obj-voxel-importer/internal/palette"
)

// Sampler returns the average color of the texture at path.
type Sampler interface {
	Average(path string) (palette.RGB, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(path string) (palette.RGB, error)

func (f SamplerFunc) Average(path string) (palette.RGB, error) { return f(path) }

// Cache is a concurrency-safe cache of texture averages keyed by path.
// Failures are cached too, so a broken texture is decoded once per cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	load  func(path string) (palette.RGB, error)
}

type cacheEntry struct {
	color palette.RGB
	err   error
}

// NewCache creates an empty cache backed by AverageColor.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		load:  AverageColor,
	}
}

// Average returns the cached average for path, loading it on first use.
func (c *Cache) Average(path string) (palette.RGB, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.color, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	color, err := c.load(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.color, entry.err
	}
	c.items[path] = &cacheEntry{color: color, err: err}
	return color, err
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
