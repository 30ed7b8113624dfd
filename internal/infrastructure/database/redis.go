package database

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OpenRedis parses a redis:// URL. An empty URL means Redis is not configured
// and returns a nil client.
func OpenRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}
