package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis. Content lives under
// <prefix>:<key> with an expiry; insertion order is tracked in a list at
// <prefix>:order so the oldest entry can be evicted when the cap is hit.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

type RedisConfig struct {
	Prefix     string
	TTL        time.Duration
	MaxEntries int
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, config RedisConfig) *RedisStore {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	return &RedisStore{
		client:     client,
		prefix:     config.Prefix,
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
	}
}

// key builds the final Redis key with prefix.
func (c *RedisStore) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *RedisStore) orderKey() string {
	return c.key("order")
}

// Get retrieves content from Redis.
// On Redis error, it returns ("", false, err) so caller can log and treat as miss.
func (c *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("context error: %w", err)
	}

	res, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}

	return res, true, nil
}

// Put stores content with the store TTL and trims the oldest entries past the cap.
func (c *RedisStore) Put(ctx context.Context, key string, content string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	redisKey := c.key(key)
	orderKey := c.orderKey()

	var length *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey, content, c.ttl)
		pipe.LRem(ctx, orderKey, 0, redisKey)
		pipe.RPush(ctx, orderKey, redisKey)
		length = pipe.LLen(ctx, orderKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	for n := length.Val(); n > int64(c.maxEntries); n-- {
		oldest, err := c.client.LPop(ctx, orderKey).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return fmt.Errorf("redis evict failed: %w", err)
		}
		if err := c.client.Del(ctx, oldest).Err(); err != nil {
			return fmt.Errorf("redis evict failed: %w", err)
		}
	}

	return nil
}
