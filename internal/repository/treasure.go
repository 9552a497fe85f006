package repository

import (
	"context"

	"treasurehunt/internal/models"
	"treasurehunt/internal/observability"

	"gorm.io/gorm"
)

// TreasureRepository defines persistence operations for treasures.
type TreasureRepository interface {
	Create(ctx context.Context, treasure *models.Treasure) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit int) ([]models.Treasure, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type treasureRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTreasureRepository returns a new TreasureRepository implementation.
func NewTreasureRepository(db *gorm.DB) TreasureRepository {
	return &treasureRepository{db: db, log: observability.NewRepoLogger("treasures")}
}

func (r *treasureRepository) Create(ctx context.Context, treasure *models.Treasure) error {
	if err := r.db.WithContext(ctx).Create(treasure).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"treasure_id": treasure.ID, "creator_id": treasure.CreatorID})
	return nil
}

func (r *treasureRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Treasure{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// List returns up to limit treasures, newest first. limit is clamped to [1, 1000].
func (r *treasureRepository) List(ctx context.Context, limit int) ([]models.Treasure, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	var treasures []models.Treasure
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&treasures).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return treasures, nil
}

func (r *treasureRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Treasure{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return 0, models.NewInternalError(res.Error)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"rows": res.RowsAffected})
	return res.RowsAffected, nil
}
