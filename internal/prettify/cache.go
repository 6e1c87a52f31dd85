package prettify

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the render cache capacity when the config does not
// override it.
const DefaultCacheSize = 64

type cacheKey struct {
	fingerprint Fingerprint
	width       int
}

// CacheStats counts cache outcomes since construction or Clear.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// RenderCache memoizes rendered content keyed by content fingerprint and
// terminal width. Identical content rendered at the same width is
// produced exactly once; a lookup counts as a use for eviction order.
type RenderCache struct {
	entries *lru.Cache[cacheKey, *RenderedContent]
	stats   CacheStats
}

// NewRenderCache builds a cache holding up to maxEntries renders.
// Non-positive sizes fall back to DefaultCacheSize.
func NewRenderCache(maxEntries int) *RenderCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	c := &RenderCache{}
	c.entries, _ = lru.NewWithEvict(maxEntries, func(cacheKey, *RenderedContent) {
		c.stats.Evictions++
	})
	return c
}

// Get returns the cached render for (fingerprint, width) and marks it
// most recently used.
func (c *RenderCache) Get(fp Fingerprint, width int) (*RenderedContent, bool) {
	content, ok := c.entries.Get(cacheKey{fp, width})
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return content, ok
}

// Put stores a render, evicting the least recently used entry when full.
func (c *RenderCache) Put(fp Fingerprint, width int, content *RenderedContent) {
	c.entries.Add(cacheKey{fp, width}, content)
}

// GetOrRender returns the cached render or produces one via render and
// stores it. A nil render result is not cached.
func (c *RenderCache) GetOrRender(fp Fingerprint, width int, render func() (*RenderedContent, error)) (*RenderedContent, error) {
	if content, ok := c.Get(fp, width); ok {
		return content, nil
	}
	content, err := render()
	if err != nil || content == nil {
		return nil, err
	}
	c.Put(fp, width, content)
	return content, nil
}

// Invalidate drops every cached render of the given content, at all
// widths.
func (c *RenderCache) Invalidate(fp Fingerprint) {
	for _, key := range c.entries.Keys() {
		if key.fingerprint == fp {
			c.entries.Remove(key)
		}
	}
}

// Clear empties the cache and resets statistics.
func (c *RenderCache) Clear() {
	c.entries.Purge()
	c.stats = CacheStats{}
}

// Len returns the number of cached renders.
func (c *RenderCache) Len() int { return c.entries.Len() }

// Stats returns a snapshot of the cache counters. Evictions triggered by
// Clear are excluded.
func (c *RenderCache) Stats() CacheStats { return c.stats }
