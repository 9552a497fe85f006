package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome label values for TreasuresTotal.
const (
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
)

// SeedMetrics holds the collectors recorded by a seeding run.
type SeedMetrics struct {
	// TreasuresTotal counts treasure jobs by city and outcome.
	TreasuresTotal *prometheus.CounterVec
	// JobDuration records build-and-save latency per city.
	JobDuration *prometheus.HistogramVec
	// CreatorsCreated counts users created because none existed.
	CreatorsCreated prometheus.Counter
	// CreatorFallbacks counts treasures stamped with a fake creator after a lookup error.
	CreatorFallbacks prometheus.Counter
}

// NewSeedMetrics registers the seed collectors on reg. A nil reg leaves them
// unregistered, which is what tests and dry runs usually want.
func NewSeedMetrics(reg prometheus.Registerer) *SeedMetrics {
	factory := promauto.With(reg)
	return &SeedMetrics{
		TreasuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treasurehunt_seed_treasures_total",
			Help: "Total number of treasure seed jobs by city and outcome",
		}, []string{"city", "outcome"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treasurehunt_seed_job_duration_seconds",
			Help:    "Time spent building and saving one treasure",
			Buckets: prometheus.DefBuckets,
		}, []string{"city"}),
		CreatorsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_seed_creators_created_total",
			Help: "Total number of creator users created during seeding",
		}),
		CreatorFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_seed_creator_fallbacks_total",
			Help: "Total number of treasures assigned a synthetic creator after a lookup failure",
		}),
	}
}

// TrackJob returns a function that records the job's outcome and latency when called.
func (m *SeedMetrics) TrackJob(city string) func(err error) {
	start := time.Now()
	return func(err error) {
		m.JobDuration.WithLabelValues(city).Observe(time.Since(start).Seconds())
		outcome := OutcomeCreated
		if err != nil {
			outcome = OutcomeFailed
		}
		m.TreasuresTotal.WithLabelValues(city, outcome).Inc()
	}
}

// Push sends everything gathered by g to a Prometheus Pushgateway.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
