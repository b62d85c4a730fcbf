package announcements

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyFeed = "announcements:"

// Cache keeps the last good feed per symbol set. A miss is (nil, nil).
// Entries are kept for the retention period, well past their freshness, so a
// failed refresh can still serve the previous result.
type Cache interface {
	Get(ctx context.Context, key string) (*Feed, error)
	Set(ctx context.Context, key string, f *Feed) error
}

type memoryEntry struct {
	feed    Feed
	expires time.Time
}

// MemoryCache keeps feeds in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	retain  time.Duration
	entries map[string]memoryEntry
}

// NewMemoryCache returns a MemoryCache holding feeds for retain.
func NewMemoryCache(retain time.Duration) *MemoryCache {
	return &MemoryCache{retain: retain, entries: make(map[string]memoryEntry)}
}

// Get returns a cached feed, or nil if missing or expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*Feed, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, nil
	}
	f := e.feed
	return &f, nil
}

// Set stores f until the retention period elapses.
func (c *MemoryCache) Set(_ context.Context, key string, f *Feed) error {
	if c.retain <= 0 {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{feed: *f, expires: time.Now().Add(c.retain)}
	c.mu.Unlock()
	return nil
}

// RedisCache caches feeds in Redis as JSON.
type RedisCache struct {
	rdb    *redis.Client
	retain time.Duration
}

// NewRedisCache returns a new RedisCache.
func NewRedisCache(rdb *redis.Client, retain time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, retain: retain}
}

// Get returns a cached feed or nil on miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*Feed, error) {
	b, err := c.rdb.Get(ctx, keyFeed+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f Feed
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Set stores the feed in cache.
func (c *RedisCache) Set(ctx context.Context, key string, f *Feed) error {
	if c.retain <= 0 {
		return nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyFeed+key, b, c.retain).Err()
}
