package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key, e.g. "callout:".
	Prefix string
}

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection, retrying
// transient failures a few times.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := RetryWithBackoff(ctx, 3, 200*time.Millisecond, func() error {
		return Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, cfg.Addr, err)
	}
	return NewRedisCacheFromClient(client, cfg.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close implements Cache.
func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
