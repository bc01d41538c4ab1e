// Package cache provides a small keyed byte cache with per-entry TTL,
// backed by Redis. Cache failures are treated as misses: the store is an
// accelerator, never a source of truth.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
}

// New connects a cache to the Redis instance at addr.
func New(addr string) *Cache {
	return &Cache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies connectivity, for startup checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached bytes for key and whether the key was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s: %v", key, err)
		}
		return nil, false
	}
	return raw, true
}

// Set stores value under key for ttl. Errors are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

// Forget drops a key, for invalidation after writes.
func (c *Cache) Forget(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: forget %s: %v", key, err)
	}
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
