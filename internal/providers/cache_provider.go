package providers

import (
	"time"
	"unsafe"
	"withings-mcp/internal/structures"

	"github.com/coocood/freecache"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Clear()
}

// CacheProvider keeps vendor payloads zstd-compressed in a freecache ring.
type CacheProvider struct {
	cache      *freecache.Cache
	compressor CompressorInterface
	ttl        int
	logger     Logger
}

func NewCacheProvider(conf *structures.Config, logger Logger, compressor CompressorInterface) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	ttl := max(int(conf.Cache.TTL/time.Second), 1)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache:      freecache.NewCache(sizeBytes),
		compressor: compressor,
		ttl:        ttl,
		logger:     logger,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never written to.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	packed, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	val, err := c.compressor.Decompress(packed)
	if err != nil {
		c.logger.Warnf(TypeApp, "Dropping unreadable cache entry %s: %s", key, err)
		c.cache.Del(unsafeStringToBytes(key))
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Set(key string, value []byte) {
	packed, err := c.compressor.Compress(value)
	if err != nil {
		c.logger.Warnf(TypeApp, "Not caching %s: %s", key, err)
		return
	}
	if err = c.cache.Set(unsafeStringToBytes(key), packed, c.ttl); err != nil {
		c.logger.Debugf(TypeApp, "Cache set %s: %s", key, err)
	}
}

func (c *CacheProvider) Clear() {
	c.cache.Clear()
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Clear()                      {}
