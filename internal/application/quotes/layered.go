package quotes

import (
	"context"

	"folio-backend/internal/domain"
)

// LayeredCache checks process memory first, then a shared cache. Hits from
// the shared cache are copied into memory keeping their original fetch time,
// so no quote outlives TTL in either layer.
type LayeredCache struct {
	local  *MemoryCache
	shared Cache
}

// NewLayeredCache builds a two-level cache. shared may be nil.
func NewLayeredCache(local *MemoryCache, shared Cache) *LayeredCache {
	return &LayeredCache{local: local, shared: shared}
}

func (c *LayeredCache) Get(ctx context.Context, key string) (domain.Quote, bool) {
	if q, ok := c.local.Get(ctx, key); ok {
		return q, true
	}
	if c.shared == nil {
		return domain.Quote{}, false
	}
	q, ok := c.shared.Get(ctx, key)
	if !ok {
		return domain.Quote{}, false
	}
	if c.local.now().Sub(q.FetchedAt) >= c.local.ttl {
		return domain.Quote{}, false
	}
	c.local.put(key, q, q.FetchedAt)
	return q, true
}

func (c *LayeredCache) Set(ctx context.Context, key string, q domain.Quote) {
	if q.FetchedAt.IsZero() {
		q.FetchedAt = c.local.now()
	}
	c.local.Set(ctx, key, q)
	if c.shared != nil {
		c.shared.Set(ctx, key, q)
	}
}

// Len reports the number of quotes held in process memory.
func (c *LayeredCache) Len() int {
	return c.local.Len()
}
