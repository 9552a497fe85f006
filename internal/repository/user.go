// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"treasurehunt/internal/cache"
	"treasurehunt/internal/models"
	"treasurehunt/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	// First returns the lowest-id user straight from the database, or nil when
	// the table is empty.
	First(ctx context.Context) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db    *gorm.DB
	redis *redis.Client
	log   *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation. A nil redis
// client disables caching.
func NewUserRepository(db *gorm.DB, redisClient *redis.Client) UserRepository {
	return &userRepository{db: db, redis: redisClient, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := cache.Aside(ctx, r.redis, cache.UsersKey, &users, cache.UsersTTL, func() error {
		if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	r.log.LogRead(ctx, map[string]interface{}{"count": len(users)})
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *userRepository) First(ctx context.Context) (*models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Limit(1).Find(&users).Error; err != nil {
		r.log.LogError(ctx, err, "first")
		return nil, models.NewInternalError(err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.redis, cache.UsersKey)
	r.log.LogCreate(ctx, map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return nil
}

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
