package dirsize

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSizeCache_SetGet(t *testing.T) {
	cache := NewSizeCache(CacheOptions{})
	root := t.TempDir()

	_, ok := cache.Get(root)
	assert.False(t, ok)

	cache.Set(root, 42)

	size, ok := cache.Get(root)
	assert.True(t, ok)
	assert.Equal(t, int64(42), size)

	size, ok = cache.Get(root + string(filepath.Separator) + ".")
	assert.True(t, ok, "keys are cleaned")
	assert.Equal(t, int64(42), size)
}

func TestSizeCache_Bounded(t *testing.T) {
	cache := NewSizeCache(CacheOptions{Size: 2})

	cache.Set("/a", 1)
	cache.Set("/b", 2)
	cache.Set("/c", 3)

	assert.Equal(t, 2, cache.Len())

	_, ok := cache.Get("/a")
	assert.False(t, ok, "least recently used entry is evicted")
}

func TestSizeCache_TTL(t *testing.T) {
	cache := NewSizeCache(CacheOptions{TTL: 20 * time.Millisecond})
	cache.Set("/a", 1)

	assert.Eventually(t, func() bool {
		_, ok := cache.Get("/a")

		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestSizeCache_Invalidate(t *testing.T) {
	cache := NewSizeCache(CacheOptions{})

	cache.Set("/data", 100)
	cache.Set("/data/sub", 60)
	cache.Set("/data/sub/deep", 10)
	cache.Set("/data/other", 40)
	cache.Set("/database", 5)

	removed := cache.Invalidate("/data/sub")

	assert.Equal(t, 3, removed)

	for _, path := range []string{"/data", "/data/sub", "/data/sub/deep"} {
		_, ok := cache.Get(path)
		assert.False(t, ok, path)
	}

	for _, path := range []string{"/data/other", "/database"} {
		_, ok := cache.Get(path)
		assert.True(t, ok, path)
	}
}

func TestSizeCache_Purge(t *testing.T) {
	cache := NewSizeCache(CacheOptions{})
	cache.Set("/a", 1)
	cache.Set("/b", 2)

	cache.Purge()

	assert.Zero(t, cache.Len())
}
