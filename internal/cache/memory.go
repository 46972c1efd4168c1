package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	content   string
	createdAt time.Time
}

// MemoryStore is a bounded FIFO store. Reads go through Peek so that lookups
// never change eviction order: the entry inserted first is evicted first.
// Expiry is checked on read; no background goroutine is started.
type MemoryStore struct {
	items *lru.Cache[string, memoryEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates an in-memory store.
// Non-positive arguments fall back to DefaultMaxEntries and DefaultTTL.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// lru.New only fails for a non-positive size.
	items, _ := lru.New[string, memoryEntry](maxEntries)

	return &MemoryStore{
		items: items,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the content stored under key if it is younger than the TTL.
func (c *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := c.items.Peek(key)
	if !ok {
		return "", false, nil
	}

	if c.now().Sub(entry.createdAt) >= c.ttl {
		c.items.Remove(key)
		return "", false, nil
	}

	return entry.content, true, nil
}

// Put inserts or overwrites key. An overwrite counts as a fresh insertion.
func (c *MemoryStore) Put(_ context.Context, key string, content string) error {
	c.items.Add(key, memoryEntry{
		content:   content,
		createdAt: c.now(),
	})
	return nil
}

// Len returns the number of items currently in the store.
func (c *MemoryStore) Len() int {
	return c.items.Len()
}

// Keys returns the stored keys from oldest to newest insertion.
func (c *MemoryStore) Keys() []string {
	return c.items.Keys()
}
