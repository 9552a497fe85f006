// Package bootstrap opens the storage a command needs from its configuration.
package bootstrap

import (
	"errors"
	"fmt"

	"treasurehunt/internal/cache"
	"treasurehunt/internal/config"
	"treasurehunt/internal/database"
	"treasurehunt/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// migrate is swapped in tests to exercise the failure path.
var migrate = database.Migrate

// Options control runtime initialization behavior.
type Options struct {
	// Migrate forces schema migration even in production, where Connect skips it.
	Migrate bool
}

// Runtime bundles the open handles and the repositories built on them.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	Users     repository.UserRepository
	Treasures repository.TreasureRepository
}

// InitRuntime connects to the database and Redis. Redis is optional and stays
// nil when REDIS_URL is empty or unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: nil config")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.Migrate && cfg.IsProduction() {
		if err := migrate(db); err != nil {
			closeDB(db)
			return nil, err
		}
	}

	r := cache.InitRedis(cfg.RedisURL)

	return &Runtime{
		DB:        db,
		Redis:     r,
		Users:     repository.NewUserRepository(db, r),
		Treasures: repository.NewTreasureRepository(db),
	}, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Close releases the database pool and the Redis client.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		} else {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
