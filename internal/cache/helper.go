package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keys and TTLs.
const (
	UsersKey = "treasurehunt:users:all"
	UsersTTL = 30 * time.Second
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, c *redis.Client, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	s, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, c *redis.Client, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate dest,
// then stores dest with ttl. Redis failures degrade to calling fetch directly.
func Aside(ctx context.Context, c *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, c, key, dest)
	if err != nil {
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, c, key, dest, ttl); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Invalidate deletes keys, ignoring a nil client.
func Invalidate(ctx context.Context, c *redis.Client, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
