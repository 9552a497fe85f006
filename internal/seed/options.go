package seed

import (
	"time"

	"treasurehunt/internal/observability"
)

// Defaults for the CLI flags and Options.withDefaults.
const (
	DefaultTotal    = 30
	DefaultWorkers  = 5
	DefaultRadiusKM = 30.0
	// DefaultPassword is given to every creator the seeder has to invent.
	DefaultPassword = "password123"
)

// Options configures the seeder. A zero Total seeds nothing and a RadiusKM of
// zero pins every treasure to its city; callers wanting the usual run pass
// DefaultTotal and DefaultRadiusKM. A non-positive Workers falls back to
// DefaultWorkers.
type Options struct {
	// Total is split evenly across Cities; the remainder is dropped.
	Total    int
	Workers  int
	RadiusKM float64
	// RandomSeed makes a run reproducible; 0 seeds from the clock.
	RandomSeed int64
	DryRun     bool
	SkipBcrypt bool
	Cities     []City

	Metrics  *observability.SeedMetrics
	Progress ProgressFactory
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Total < 0 {
		o.Total = 0
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.RadiusKM < 0 {
		o.RadiusKM = DefaultRadiusKM
	}
	if len(o.Cities) == 0 {
		o.Cities = DefaultCities()
	}
	if o.Metrics == nil {
		o.Metrics = observability.NewSeedMetrics(nil)
	}
	if o.Progress == nil {
		o.Progress = SilentProgress
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	return o
}

// PerCity is the number of treasures generated for each city.
func (o Options) PerCity() int {
	cities := len(o.Cities)
	if cities == 0 {
		cities = len(DefaultCities())
	}
	if o.Total <= 0 {
		return 0
	}
	return o.Total / cities
}
