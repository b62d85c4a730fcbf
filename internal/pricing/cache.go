package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyQuote = "quote:"

// Cache stores recent quotes by symbol. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context, symbol string) (*Quote, error)
	Set(ctx context.Context, q *Quote) error
}

type memoryEntry struct {
	quote   Quote
	expires time.Time
}

// MemoryCache keeps quotes in process memory for ttl.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryCache returns a MemoryCache holding quotes for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry)}
}

// Get returns a cached quote, or nil if missing or expired.
func (c *MemoryCache) Get(_ context.Context, symbol string) (*Quote, error) {
	c.mu.RLock()
	e, ok := c.entries[symbol]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, nil
	}
	q := e.quote
	return &q, nil
}

// Set stores q until the ttl elapses.
func (c *MemoryCache) Set(_ context.Context, q *Quote) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.entries[q.Symbol] = memoryEntry{quote: *q, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// RedisCache caches quotes in Redis as JSON.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache returns a new RedisCache.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns a cached quote or nil on miss.
func (c *RedisCache) Get(ctx context.Context, symbol string) (*Quote, error) {
	b, err := c.rdb.Get(ctx, keyQuote+symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := json.Unmarshal(b, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Set stores the quote in cache.
func (c *RedisCache) Set(ctx context.Context, q *Quote) error {
	if c.ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyQuote+q.Symbol, b, c.ttl).Err()
}
