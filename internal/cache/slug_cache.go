package cache

import (
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Cache = (*SlugCache)(nil)

// SlugCache keeps encoded published items by slug, bounded in size and per-entry TTL.
type SlugCache struct {
	mainCache  *freecache.Cache
	ttlSeconds int
}

func NewSlugCache(sizeMB int, ttl time.Duration) *SlugCache {
	// freecache enforces a 512KB minimum
	return &SlugCache{
		mainCache:  freecache.NewCache(sizeMB * 1024 * 1024),
		ttlSeconds: int(ttl.Seconds()),
	}
}

func (c *SlugCache) Get(key string) ([]byte, bool) {
	value, err := c.mainCache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *SlugCache) Set(key string, value []byte) bool {
	if err := c.mainCache.Set([]byte(key), value, c.ttlSeconds); err != nil {
		log.Warnf("[slug cache] set %s: %s", key, err)
		return false
	}
	return true
}

func (c *SlugCache) Clear() {
	c.mainCache.Clear()
}
