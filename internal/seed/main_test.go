package seed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"treasurehunt/internal/database"
	"treasurehunt/internal/models"
	"treasurehunt/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

var errStorage = errors.New("storage unavailable")

// failingUsers fails every call.
type failingUsers struct{}

func (failingUsers) List(context.Context) ([]models.User, error) { return nil, errStorage }
func (failingUsers) Count(context.Context) (int64, error) { return 0, errStorage }
func (failingUsers) First(context.Context) (*models.User, error) { return nil, errStorage }
func (failingUsers) Create(context.Context, *models.User) error { return errStorage }

// recordingTreasures keeps created treasures in memory and fails every
// failEvery-th create when failEvery is set.
type recordingTreasures struct {
	mu        sync.Mutex
	created   []*models.Treasure
	calls     int
	failEvery int
}

func (r *recordingTreasures) Create(_ context.Context, t *models.Treasure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failEvery > 0 && r.calls%r.failEvery == 0 {
		return errStorage
	}
	r.created = append(r.created, t)
	return nil
}

func (r *recordingTreasures) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.created)), nil
}

func (r *recordingTreasures) List(context.Context, int) ([]models.Treasure, error) {
	return nil, nil
}

func (r *recordingTreasures) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.created))
	r.created = nil
	return n, nil
}

var (
	_ repository.UserRepository     = failingUsers{}
	_ repository.TreasureRepository = (*recordingTreasures)(nil)
)
