package providers

import (
	"testing"
	"time"
	"withings-mcp/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// local mock logger to avoid import cycle with testutil
type cacheTestLogger struct{}

func (m *cacheTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Close()                                        {}

func cacheConfig(enabled bool, size int, ttl time.Duration) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    size,
			TTL:     ttl,
		},
	}
}

func newTestCache(t *testing.T, enabled bool, size int, ttl time.Duration) CacheProviderInterface {
	t.Helper()
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	return NewCacheProvider(cacheConfig(enabled, size, ttl), &cacheTestLogger{}, compressor)
}

func TestCacheProvider_DisabledReturnsNoop(t *testing.T) {
	c := newTestCache(t, false, 10, time.Minute)
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_ZeroSizeReturnsNoop(t *testing.T) {
	c := newTestCache(t, true, 0, time.Minute)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_EnabledReturnsCacheProvider(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)
	assert.IsType(t, &CacheProvider{}, c)
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)

	payload := []byte(`{"status":0,"body":{"activities":[{"date":"2025-02-20","steps":8432}]}}`)
	c.Set("getactivity", payload)
	val, ok := c.Get("getactivity")
	assert.True(t, ok)
	assert.Equal(t, payload, val)
}

func TestCacheProvider_StoresCompressed(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)
	provider := c.(*CacheProvider)

	c.Set("key1", []byte("value1"))
	raw, err := provider.cache.Get([]byte("key1"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("value1"), raw)
}

func TestCacheProvider_Miss(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)

	val, ok := c.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_Overwrite(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)

	c.Set("key1", []byte("v1"))
	c.Set("key1", []byte("v2"))

	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), val)
}

func TestCacheProvider_Clear(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)

	c.Set("key1", []byte("v1"))
	c.Clear()

	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestCacheProvider_CorruptEntryIsDropped(t *testing.T) {
	c := newTestCache(t, true, 1, time.Minute)
	provider := c.(*CacheProvider)

	require.NoError(t, provider.cache.Set([]byte("key1"), []byte("not zstd"), 60))
	_, ok := c.Get("key1")
	assert.False(t, ok)

	_, err := provider.cache.Get([]byte("key1"))
	assert.Error(t, err)
}

func TestNoopCache_AlwaysMiss(t *testing.T) {
	c := &noopCache{}
	c.Set("key1", []byte("value1"))

	val, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_TTLExpiry(t *testing.T) {
	c := newTestCache(t, true, 1, time.Second)

	c.Set("key1", []byte("value1"))
	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("value1"), val)

	time.Sleep(2100 * time.Millisecond)

	_, ok = c.Get("key1")
	assert.False(t, ok)
}
