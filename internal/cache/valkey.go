package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore mirrors RedisStore on top of valkey-go.
type ValkeyStore struct {
	client     valkey.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

// NewValkeyStore creates a Valkey-backed store. The caller owns client.
func NewValkeyStore(client valkey.Client, config RedisConfig) *ValkeyStore {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	return &ValkeyStore{
		client:     client,
		prefix:     config.Prefix,
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
	}
}

func (c *ValkeyStore) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.key(key)).Build()

	res, err := c.client.Do(ctx, cmd).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("valkey get failed: %w", err)
	}
	return res, true, nil
}

func (c *ValkeyStore) Put(ctx context.Context, key string, content string) error {
	fullKey := c.key(key)
	orderKey := c.key("order")

	results := c.client.DoMulti(ctx,
		c.client.B().Set().Key(fullKey).Value(content).Ex(c.ttl).Build(),
		c.client.B().Lrem().Key(orderKey).Count(0).Element(fullKey).Build(),
		c.client.B().Rpush().Key(orderKey).Element(fullKey).Build(),
	)
	for _, res := range results {
		if err := res.Error(); err != nil {
			return fmt.Errorf("valkey set failed: %w", err)
		}
	}

	n, err := c.client.Do(ctx, c.client.B().Llen().Key(orderKey).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("valkey llen failed: %w", err)
	}

	for ; n > int64(c.maxEntries); n-- {
		oldest, err := c.client.Do(ctx, c.client.B().Lpop().Key(orderKey).Build()).ToString()
		if valkey.IsValkeyNil(err) {
			break
		}
		if err != nil {
			return fmt.Errorf("valkey evict failed: %w", err)
		}
		if err := c.client.Do(ctx, c.client.B().Del().Key(oldest).Build()).Error(); err != nil {
			return fmt.Errorf("valkey evict failed: %w", err)
		}
	}
	return nil
}
