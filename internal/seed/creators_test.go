package seed

import (
	"context"
	"sync"
	"testing"

	"treasurehunt/internal/cache"
	"treasurehunt/internal/models"
	"treasurehunt/internal/observability"
	"treasurehunt/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestResolve_CreatesSingleUserUnderConcurrency(t *testing.T) {
	db := setupSQLite(t)
	users := repository.NewUserRepository(db, nil)
	metrics := observability.NewSeedMetrics(nil)
	resolver := NewCreatorResolver(users, true, metrics)

	const callers = 16
	creators := make([]models.Creator, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			creators[i] = resolver.Resolve(context.Background(), gofakeit.New(int64(i+1)))
		}(i)
	}
	wg.Wait()

	n, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CreatorsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CreatorFallbacks))

	for _, c := range creators {
		assert.Equal(t, creators[0], c)
	}
}

func TestResolve_StaleEmptyCacheDoesNotCreateSecondUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	db := setupSQLite(t)
	users := repository.NewUserRepository(db, rdb)
	ctx := context.Background()

	existing := &models.User{Username: "ana", Email: "ana@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, existing))
	// another process cached the empty table before ana was inserted
	require.NoError(t, cache.SetJSON(ctx, rdb, cache.UsersKey, []models.User{}, cache.UsersTTL))

	metrics := observability.NewSeedMetrics(nil)
	resolver := NewCreatorResolver(users, true, metrics)
	creator := resolver.Resolve(ctx, gofakeit.New(21))

	assert.Equal(t, models.Creator{ID: "1", Name: "ana"}, creator)
	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CreatorsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CreatorFallbacks))
}

func TestResolve_PicksExistingUsers(t *testing.T) {
	db := setupSQLite(t)
	users := repository.NewUserRepository(db, nil)
	ctx := context.Background()
	for _, name := range []string{"ana", "beto", "carla"} {
		require.NoError(t, users.Create(ctx, &models.User{Username: name, Email: name + "@example.com", Password: "x"}))
	}

	metrics := observability.NewSeedMetrics(nil)
	resolver := NewCreatorResolver(users, true, metrics)
	f := gofakeit.New(3)

	seen := map[string]bool{}
	for i := 0; i < 60; i++ {
		seen[resolver.Resolve(ctx, f).Name] = true
	}
	assert.Equal(t, map[string]bool{"ana": true, "beto": true, "carla": true}, seen)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CreatorsCreated))

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestResolve_HashesPassword(t *testing.T) {
	db := setupSQLite(t)
	users := repository.NewUserRepository(db, nil)
	resolver := NewCreatorResolver(users, false, nil)

	resolver.Resolve(context.Background(), gofakeit.New(11))

	list, err := users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, DefaultPassword, list[0].Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(list[0].Password), []byte(DefaultPassword)))
	assert.NotEmpty(t, list[0].Email)
	assert.NotEmpty(t, list[0].FirstName)
}

func TestResolve_SkipBcryptStoresPlainPassword(t *testing.T) {
	db := setupSQLite(t)
	users := repository.NewUserRepository(db, nil)
	resolver := NewCreatorResolver(users, true, nil)

	creator := resolver.Resolve(context.Background(), gofakeit.New(12))
	assert.Equal(t, "1", creator.ID)

	list, err := users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultPassword, list[0].Password)
}

func TestResolve_FallsBackOnError(t *testing.T) {
	metrics := observability.NewSeedMetrics(nil)
	resolver := NewCreatorResolver(failingUsers{}, true, metrics)

	creator := resolver.Resolve(context.Background(), gofakeit.New(8))

	_, err := uuid.Parse(creator.ID)
	assert.NoError(t, err)
	assert.NotEmpty(t, creator.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CreatorFallbacks))
}

func TestResolve_NilRepositoryIsSynthetic(t *testing.T) {
	metrics := observability.NewSeedMetrics(nil)
	resolver := NewCreatorResolver(nil, false, metrics)

	creator := resolver.Resolve(context.Background(), gofakeit.New(9))

	_, err := uuid.Parse(creator.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CreatorFallbacks))
}
