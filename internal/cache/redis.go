// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

// InitRedis initializes the Redis client with the given address, which may be
// host:port or a redis:// URL. An empty or unreachable address leaves the
// client nil and the seeder runs without a cache.
func InitRedis(addr string) *redis.Client {
	client = nil
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			zap.L().Warn("invalid REDIS_URL, continuing without cache", zap.String("addr", addr), zap.Error(err))
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable, continuing without cache", zap.Error(err))
		_ = c.Close()
		return nil
	}

	zap.L().Info("redis connected", zap.String("addr", opts.Addr))
	client = c
	return client
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
