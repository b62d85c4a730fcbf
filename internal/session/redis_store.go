package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStore keeps sessions in Redis and lets key expiry enforce the TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a Redis-backed Store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Create stores the owner id under the session key until expiresAt.
func (s *RedisStore) Create(ctx context.Context, key string, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+key, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

// Lookup returns the owner of a live session.
func (s *RedisStore) Lookup(ctx context.Context, key string) (uint, error) {
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(id), nil
}

// Delete removes a session by key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+key).Err()
}
