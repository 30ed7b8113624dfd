package quotes

import (
	"context"
	"sync"
	"time"

	"folio-backend/internal/domain"
)

type entry struct {
	quote    domain.Quote
	storedAt time.Time
}

// MemoryCache is a process-local TTL cache safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]entry),
		ttl:   TTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (domain.Quote, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return domain.Quote{}, false
	}
	if now.Sub(e.storedAt) < c.ttl {
		return e.quote, true
	}

	c.mu.Lock()
	if cur, ok := c.items[key]; ok && cur.storedAt.Equal(e.storedAt) {
		delete(c.items, key)
	}
	c.mu.Unlock()
	return domain.Quote{}, false
}

func (c *MemoryCache) Set(_ context.Context, key string, q domain.Quote) {
	now := c.now()
	if q.FetchedAt.IsZero() {
		q.FetchedAt = now
	}
	c.put(key, q, now)
}

// put stores q as if it had been stored at storedAt.
func (c *MemoryCache) put(key string, q domain.Quote, storedAt time.Time) {
	c.mu.Lock()
	c.items[key] = entry{quote: q, storedAt: storedAt}
	c.mu.Unlock()
}

// Len counts entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Prune drops expired entries and returns how many were removed.
func (c *MemoryCache) Prune() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.items {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}
