// Package cache implements the TTL key-value cache, the set-if-not-exists
// lock primitive, warn markers and the serial snapshot cache on Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"serialhub/internal/shared/logger"
)

// Cache is the TTL key-value plus lock contract consumed by the application
// layer. SetLock is a set-if-not-exists primitive: false means another
// holder is in flight and the caller fails closed.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes every key matching the glob pattern, used to
	// invalidate all cached copies of a mutated serial or client.
	DelPattern(ctx context.Context, pattern string) error
	SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

const lockKeyPrefix = "serialhub:lock:"

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisCache(client *redis.Client, logger logger.Interface) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache key: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// DelPattern walks the keyspace with SCAN rather than KEYS so bulk
// invalidation never blocks the server.
func (c *RedisCache) DelPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys for pattern %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete matched keys: %w", err)
	}
	c.logger.Debugw("cache pattern invalidated", "pattern", pattern, "keys", len(keys))
	return nil
}

// SetLock acquires a TTL-bounded mutual exclusion lock via SetNX. The TTL
// bounds the damage of a crashed holder at the accepted cost of a rare
// double-admission window after a crash.
func (c *RedisCache) SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := c.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return acquired, nil
}

func (c *RedisCache) ReleaseLock(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
