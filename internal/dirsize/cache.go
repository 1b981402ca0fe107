package dirsize

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize is the number of roots a SizeCache remembers when unset.
const DefaultCacheSize = 1024

// CacheOptions configures a SizeCache.
type CacheOptions struct {
	// Size is the maximum number of cached roots (<=0 = DefaultCacheSize).
	Size int
	// TTL expires entries after this duration (<=0 = never).
	TTL time.Duration
}

// SizeCache maps a scan root to the raw total of its last calculation.
// Entries are not refreshed when the filesystem changes; callers drop stale
// ones with Invalidate.
type SizeCache struct {
	lru *expirable.LRU[string, int64]
}

// NewSizeCache creates a bounded cache.
func NewSizeCache(opt CacheOptions) *SizeCache {
	size := opt.Size
	if size <= 0 {
		size = DefaultCacheSize
	}

	return &SizeCache{lru: expirable.NewLRU[string, int64](size, nil, opt.TTL)}
}

// cacheKey returns the absolute, cleaned form of path.
func cacheKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}

// Get returns the cached raw total for path.
func (c *SizeCache) Get(path string) (int64, bool) {
	return c.lru.Get(cacheKey(path))
}

// Set records the raw total for path.
func (c *SizeCache) Set(path string, size int64) {
	c.lru.Add(cacheKey(path), size)
}

// Len returns the number of cached roots.
func (c *SizeCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *SizeCache) Purge() {
	c.lru.Purge()
}

// Invalidate drops path together with its cached descendants and ancestors,
// whose totals include it. It returns the number of removed entries.
func (c *SizeCache) Invalidate(path string) int {
	target := cacheKey(path)
	removed := 0

	for _, key := range c.lru.Keys() {
		if isWithin(target, key) || isWithin(key, target) {
			if c.lru.Remove(key) {
				removed++
			}
		}
	}

	return removed
}

// isWithin reports whether path equals root or lies below it.
func isWithin(root, path string) bool {
	if root == path {
		return true
	}

	rootWithSep := root
	if !strings.HasSuffix(rootWithSep, string(filepath.Separator)) {
		rootWithSep += string(filepath.Separator)
	}

	return strings.HasPrefix(path, rootWithSep)
}
