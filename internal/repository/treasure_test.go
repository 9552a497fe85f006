package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"treasurehunt/internal/geo"
	"treasurehunt/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTreasure(title string) *models.Treasure {
	return &models.Treasure{
		CreatorID:   "1",
		CreatorName: "ana",
		Title:       title,
		Location:    models.NewGeoJSONPoint(geo.GeoPoint{Latitude: 4.7, Longitude: -74.1}),
		Latitude:    "4.7",
		Longitude:   "-74.1",
		Difficulty:  2,
		Clues:       []string{"north"},
		Points:      10,
	}
}

func TestTreasureRepository_CreateListCountDelete(t *testing.T) {
	db := setupSQLite(t)
	repo := NewTreasureRepository(db)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, sampleTreasure(title)))
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Title, "newest first")
	assert.InDelta(t, -74.1, list[0].Location.Longitude, 1e-12)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTreasureRepository_CreateError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTreasureRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "treasures"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleTreasure("x"))
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreasureRepository_ListClampsLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTreasureRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "treasures" ORDER BY id DESC LIMIT $1`)).
		WithArgs(1000).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(context.Background(), 5000)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
