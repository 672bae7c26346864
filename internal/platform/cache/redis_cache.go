package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores records in Redis with the same TTL semantics as MemoryCache.
// Redis errors degrade to cache misses so that fetching keeps working.
type RedisCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewRedisCache creates a Redis-backed cache.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "marketdata".
// A nil client turns every call into a miss.
func NewRedisCache(rdb *redis.Client, ttl time.Duration, namespace string) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "marketdata"
	}
	return &RedisCache{rdb: rdb, ttl: ttl, namespace: namespace}
}

// Get returns the payload stored under key. Redis expires entries itself.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, c.cacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(b) == 0 {
		return nil, false
	}
	return b, true
}

// Put stores payload under key with the configured TTL (best effort).
func (c *RedisCache) Put(ctx context.Context, key string, payload []byte) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.cacheKey(key), payload, c.ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
}

// cacheKey prefixes key with the namespace.
func (c *RedisCache) cacheKey(key string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(key))
}

// safe escapes characters that are problematic for Redis keys.
// Colons are kept because callers use them as separators.
func safe(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
