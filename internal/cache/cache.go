package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON read-through cache for curve responses. A nil *Cache is a
// valid no-op cache, so callers never need to branch on whether Redis is
// configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache backed by Redis. Returns nil (a disabled cache) when
// addr is empty.
func New(addr string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get unmarshals the cached value for key into dst. Returns false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// Set stores a JSON-marshalled value under key with the cache TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for cache: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Invalidate removes keys from the cache
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate failed: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// LatestCurveKey is the cache key for the latest curve of a family
func LatestCurveKey(curveType string) string {
	return "curve:latest:" + curveType
}

// LatestSpreadKey is the cache key for the latest spread curve of a rating
func LatestSpreadKey(rating string) string {
	return "spread:latest:" + rating
}
