package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// indexCache holds one index per workspace snapshot id.
type indexCache struct {
	cache *gocache.Cache
}

func newIndexCache(expiration, cleanup time.Duration) *indexCache {
	return &indexCache{cache: gocache.New(expiration, cleanup)}
}

func (c *indexCache) Get(snapshot string) (*index, bool) {
	value, found := c.cache.Get(snapshot)
	if !found {
		return nil, false
	}
	idx, ok := value.(*index)
	return idx, ok
}

func (c *indexCache) Set(snapshot string, idx *index) {
	c.cache.SetDefault(snapshot, idx)
}

func (c *indexCache) Len() int { return c.cache.ItemCount() }
