package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, maxEntries int, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, RedisConfig{Prefix: "duetgen", TTL: ttl, MaxEntries: maxEntries}), mr
}

func TestRedisStore_EvictsOldestInsertedNotLeastRead(t *testing.T) {
	c, mr := newTestRedisStore(t, DefaultMaxEntries, DefaultTTL)
	ctx := context.Background()

	for i := 0; i < DefaultMaxEntries; i++ {
		if err := c.Put(ctx, fmt.Sprintf("k%02d", i), fmt.Sprintf("content %d", i)); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	if _, hit, err := c.Get(ctx, "k00"); err != nil || !hit {
		t.Fatalf("expected k00 to be present before overflow, hit=%v err=%v", hit, err)
	}

	if err := c.Put(ctx, "k50", "content 50"); err != nil {
		t.Fatalf("Put overflow: %v", err)
	}

	order, err := mr.List("duetgen:order")
	if err != nil {
		t.Fatalf("order list: %v", err)
	}
	if len(order) != DefaultMaxEntries {
		t.Fatalf("expected %d entries in order list, got %d", DefaultMaxEntries, len(order))
	}
	if mr.Exists("duetgen:k00") {
		t.Fatalf("expected k00 to be deleted on eviction")
	}
	if _, hit, _ := c.Get(ctx, "k00"); hit {
		t.Fatalf("expected k00 to be evicted")
	}
	for _, k := range []string{"k01", "k49", "k50"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Fatalf("expected %s to survive eviction", k)
		}
	}
}

func TestRedisStore_OverwriteRefreshesInsertion(t *testing.T) {
	c, mr := newTestRedisStore(t, 2, time.Minute)
	ctx := context.Background()

	_ = c.Put(ctx, "a", "first value")
	_ = c.Put(ctx, "b", "second value")
	mr.FastForward(50 * time.Second)
	_ = c.Put(ctx, "a", "first value again")

	order, err := mr.List("duetgen:order")
	if err != nil {
		t.Fatalf("order list: %v", err)
	}
	if len(order) != 2 || order[0] != "duetgen:b" || order[1] != "duetgen:a" {
		t.Fatalf("unexpected insertion order: %v", order)
	}

	// A third key evicts b, the oldest insertion, not the rewritten a.
	_ = c.Put(ctx, "c", "third value")
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Fatalf("expected b to be evicted")
	}

	mr.FastForward(20 * time.Second)
	got, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || got != "first value again" {
		t.Fatalf("expected overwritten a to be fresh, got hit=%v %q err=%v", hit, got, err)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	c, mr := newTestRedisStore(t, DefaultMaxEntries, DefaultTTL)
	ctx := context.Background()

	if err := c.Put(ctx, "k", "hello there"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ttl := mr.TTL("duetgen:k"); ttl != DefaultTTL {
		t.Fatalf("expected ttl %v, got %v", DefaultTTL, ttl)
	}

	mr.FastForward(DefaultTTL)
	_, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL")
	}
}

func TestRedisStore_UnreachableReturnsError(t *testing.T) {
	c, mr := newTestRedisStore(t, DefaultMaxEntries, DefaultTTL)
	mr.Close()

	if _, hit, err := c.Get(context.Background(), "k"); err == nil || hit {
		t.Fatalf("expected error on closed server, hit=%v err=%v", hit, err)
	}
}
