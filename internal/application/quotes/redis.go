package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"folio-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyPrefix namespaces quote keys in Redis.
const KeyPrefix = "quote:"

// RedisCache shares quotes between instances. Entries expire TTL after the
// quote was fetched.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func NewRedisCache(rdb *redis.Client, logger zerolog.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: TTL, now: time.Now, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.Quote, bool) {
	raw, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
		return domain.Quote{}, false
	}
	var q domain.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("quote cache entry unreadable")
		return domain.Quote{}, false
	}
	return q, true
}

func (c *RedisCache) Set(ctx context.Context, key string, q domain.Quote) {
	if q.FetchedAt.IsZero() {
		q.FetchedAt = c.now()
	}
	remaining := c.ttl - c.now().Sub(q.FetchedAt)
	if remaining <= 0 {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, KeyPrefix+key, raw, remaining).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
	}
}
