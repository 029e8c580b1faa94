package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheMetricsTestMetrics struct {
	noopMetrics
	hits   int
	misses int
}

func (m *cacheMetricsTestMetrics) IncCacheHits()   { m.hits++ }
func (m *cacheMetricsTestMetrics) IncCacheMisses() { m.misses++ }

type cacheMetricsTestInner struct {
	data map[string][]byte
}

func (c *cacheMetricsTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *cacheMetricsTestInner) Set(key string, value []byte) {
	c.data[key] = value
}
func (c *cacheMetricsTestInner) Clear() {
	c.data = map[string][]byte{}
}

func TestMetricsCacheProvider_Hit(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"key1": []byte("val1")}}
	metrics := &cacheMetricsTestMetrics{}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("val1"), val)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 0, metrics.misses)
}

func TestMetricsCacheProvider_Miss(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := &cacheMetricsTestMetrics{}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, 0, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestMetricsCacheProvider_SetAndClearDelegate(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	cache := &MetricsCacheProvider{inner: inner, metrics: &cacheMetricsTestMetrics{}}

	cache.Set("key2", []byte("val2"))
	val, ok := inner.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, []byte("val2"), val)

	cache.Clear()
	_, ok = inner.Get("key2")
	assert.False(t, ok)
}

func TestNewInstrumentedCacheProvider_DisabledSkipsMetrics(t *testing.T) {
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	metrics := &cacheMetricsTestMetrics{}

	cache := NewInstrumentedCacheProvider(cacheConfig(false, 1, time.Minute), &cacheTestLogger{}, compressor, metrics)
	assert.IsType(t, &noopCache{}, cache)

	cache.Get("a")
	assert.Equal(t, 0, metrics.misses)
}

func TestNewInstrumentedCacheProvider_Enabled(t *testing.T) {
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	metrics := &cacheMetricsTestMetrics{}

	cache := NewInstrumentedCacheProvider(cacheConfig(true, 1, time.Minute), &cacheTestLogger{}, compressor, metrics)
	require.IsType(t, &MetricsCacheProvider{}, cache)

	cache.Set("a", []byte("1"))
	cache.Get("a") // hit
	cache.Get("b") // miss
	cache.Get("a") // hit
	cache.Get("c") // miss

	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}
