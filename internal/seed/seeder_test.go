package seed

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"treasurehunt/internal/observability"
	"treasurehunt/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Zero(t, o.Total)
	assert.Equal(t, DefaultWorkers, o.Workers)
	assert.Equal(t, 0.0, o.RadiusKM)
	assert.Equal(t, DefaultCities(), o.Cities)
	assert.NotZero(t, o.RandomSeed)
	assert.NotNil(t, o.Metrics)
	assert.NotNil(t, o.Progress)

	assert.Equal(t, DefaultRadiusKM, Options{RadiusKM: -1}.withDefaults().RadiusKM)
}

func TestOptions_PerCityDropsRemainder(t *testing.T) {
	medellin := City{Name: "Medellín", Lat: 6.2442, Lng: -75.5812}
	three := []City{Bogota, Cartagena, medellin}

	tests := []struct {
		total  int
		cities []City
		want   int
	}{
		{30, nil, 15},
		{31, nil, 15},
		{1, nil, 0},
		{10, three, 3},
		{0, nil, 0},
		{7, []City{medellin}, 7},
	}
	for _, tt := range tests {
		o := Options{Total: tt.total, Cities: tt.cities}
		assert.Equal(t, tt.want, o.PerCity(), "total=%d cities=%d", tt.total, len(tt.cities))
	}
}

func TestRun_ZeroTotal(t *testing.T) {
	s := NewSeeder(nil, nil, Options{Total: 0, DryRun: true, Progress: TerminalProgress(&bytes.Buffer{})})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Created)
	assert.Equal(t, map[string]int{"Bogotá": 0, "Cartagena": 0}, summary.PerCity)
}

func TestRun_DryRunBuildsWithoutStorage(t *testing.T) {
	metrics := observability.NewSeedMetrics(nil)
	s := NewSeeder(nil, nil, Options{Total: 31, Workers: 4, RadiusKM: 30, RandomSeed: 1, DryRun: true, Metrics: metrics})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 30, summary.Created)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, map[string]int{"Bogotá": 15, "Cartagena": 15}, summary.PerCity)
	assert.Equal(t, 15.0, testutil.ToFloat64(metrics.TreasuresTotal.WithLabelValues("Bogotá", observability.OutcomeCreated)))
	assert.Contains(t, summary.String(), "Seeding complete: 30 treasures created in")
}

func TestRun_PersistsToSQLite(t *testing.T) {
	db := setupSQLite(t)
	treasures := repository.NewTreasureRepository(db)
	users := repository.NewUserRepository(db, nil)

	s := NewSeeder(treasures, users, Options{Total: 10, Workers: 3, RadiusKM: 30, RandomSeed: 77, SkipBcrypt: true})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Created)

	n, err := treasures.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	userCount, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), userCount)

	list, err := treasures.List(context.Background(), 100)
	require.NoError(t, err)
	for _, tr := range list {
		assert.Equal(t, "1", tr.CreatorID)
		assert.NotEmpty(t, tr.Clues)
	}
}

func TestRun_FailuresDoNotStopSiblings(t *testing.T) {
	repo := &recordingTreasures{failEvery: 3}
	metrics := observability.NewSeedMetrics(nil)
	s := NewSeeder(repo, failingUsers{}, Options{Total: 12, Workers: 2, RandomSeed: 5, SkipBcrypt: true, Metrics: metrics})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Created)
	assert.Equal(t, 4, summary.Failed)
	assert.Len(t, repo.created, 8)
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.CreatorFallbacks))
}

func TestRun_SameSeedSameData(t *testing.T) {
	run := func(workers int) []string {
		repo := &recordingTreasures{}
		s := NewSeeder(repo, nil, Options{
			Total: 20, Workers: workers, RadiusKM: 30, RandomSeed: 2026,
			Now: func() time.Time { return fixedNow },
		})
		_, err := s.Run(context.Background())
		require.NoError(t, err)

		keys := make([]string, 0, len(repo.created))
		for _, tr := range repo.created {
			keys = append(keys, tr.Title+"|"+tr.Latitude+"|"+tr.Longitude)
		}
		sort.Strings(keys)
		return keys
	}

	assert.Equal(t, run(1), run(5))
}

func TestRun_CancelledContext(t *testing.T) {
	repo := &recordingTreasures{}
	s := NewSeeder(repo, nil, Options{Total: 10, RandomSeed: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Created)
	assert.Empty(t, repo.created)
}

func TestClear(t *testing.T) {
	db := setupSQLite(t)
	treasures := repository.NewTreasureRepository(db)
	users := repository.NewUserRepository(db, nil)
	ctx := context.Background()

	s := NewSeeder(treasures, users, Options{Total: 4, RandomSeed: 3, SkipBcrypt: true})
	_, err := s.Run(ctx)
	require.NoError(t, err)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	left, err := treasures.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestClear_DryRunIsNoop(t *testing.T) {
	s := NewSeeder(nil, nil, Options{DryRun: true})
	n, err := s.Clear(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTerminalProgress_WritesDescription(t *testing.T) {
	var buf bytes.Buffer
	s := NewSeeder(nil, nil, Options{Total: 4, RandomSeed: 1, DryRun: true, Progress: TerminalProgress(&buf)})

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Treasures in Bogotá")
	assert.Contains(t, buf.String(), "Treasures in Cartagena")
}
