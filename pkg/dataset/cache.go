package dataset

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TableCache keeps decoded tables by file ID so repeated chat turns do not
// re-read the upload. Cached tables are never mutated.
type TableCache struct {
	cache *cache.Cache
}

// NewTableCache creates a cache whose entries expire after ttl.
func NewTableCache(ttl time.Duration) *TableCache {
	return &TableCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Load returns the cached table for id, or loads path and caches it.
func (c *TableCache) Load(id, path string) (*Table, error) {
	if cached, found := c.cache.Get(id); found {
		return cached.(*Table), nil
	}
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(id, t)
	return t, nil
}

// Forget drops id from the cache.
func (c *TableCache) Forget(id string) {
	c.cache.Delete(id)
}
