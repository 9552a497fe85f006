package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"treasurehunt/internal/observability"
	"treasurehunt/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Summary reports the outcome of a seeding run.
type Summary struct {
	Created int            `json:"created"`
	Failed  int            `json:"failed"`
	PerCity map[string]int `json:"per_city"`
	Elapsed time.Duration  `json:"elapsed"`
	DryRun  bool           `json:"dry_run"`
}

// String renders the final report line.
func (s Summary) String() string {
	return fmt.Sprintf("Seeding complete: %d treasures created in %.2f seconds", s.Created, s.Elapsed.Seconds())
}

// Seeder generates treasures for every configured city using a bounded pool.
type Seeder struct {
	treasures repository.TreasureRepository
	creators  *CreatorResolver
	factory   *Factory
	opts      Options
}

// NewSeeder wires a Seeder. In dry-run mode the repositories may be nil.
func NewSeeder(treasures repository.TreasureRepository, users repository.UserRepository, opts Options) *Seeder {
	opts = opts.withDefaults()
	if opts.DryRun {
		users = nil
	}
	return &Seeder{
		treasures: treasures,
		creators:  NewCreatorResolver(users, opts.SkipBcrypt, opts.Metrics),
		factory:   NewFactory(opts.RadiusKM, opts.Now),
		opts:      opts,
	}
}

// Options returns the effective options after defaults were applied.
func (s *Seeder) Options() Options {
	return s.opts
}

// Run seeds each city in turn. Individual job failures are counted in the
// Summary; the returned error is only set when the run could not proceed.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{PerCity: make(map[string]int, len(s.opts.Cities)), DryRun: s.opts.DryRun}

	perCity := s.opts.PerCity()
	span, ctx := observability.NewSpan(ctx, "seed.run",
		attribute.Int("seed.total", s.opts.Total),
		attribute.Int("seed.per_city", perCity),
		attribute.Int("seed.workers", s.opts.Workers),
		attribute.Bool("seed.dry_run", s.opts.DryRun),
	)
	defer span.End()

	log := observability.L(ctx)
	// job seeds are drawn up front so the output does not depend on scheduling
	master := rand.New(rand.NewSource(s.opts.RandomSeed))

	for _, city := range s.opts.Cities {
		if err := ctx.Err(); err != nil {
			break
		}
		log.Info(fmt.Sprintf("Generating %d treasures in %s...", perCity, city.Name))
		created, failed := s.seedCity(ctx, city, perCity, master)
		summary.Created += created
		summary.Failed += failed
		summary.PerCity[city.Name] = created
	}

	summary.Elapsed = time.Since(start)
	span.AddAttributes(attribute.Int("seed.created", summary.Created), attribute.Int("seed.failed", summary.Failed))

	if err := ctx.Err(); err != nil {
		span.SetError(err)
		return summary, fmt.Errorf("seeding interrupted: %w", err)
	}
	log.Info(summary.String(), zap.Int("failed", summary.Failed), zap.Bool("dry_run", summary.DryRun))
	return summary, nil
}

func (s *Seeder) seedCity(ctx context.Context, city City, n int, master *rand.Rand) (int, int) {
	span, ctx := observability.NewSpan(ctx, "seed.city", attribute.String("seed.city", city.Name))
	defer span.End()
	if n == 0 {
		return 0, 0
	}

	bar := s.opts.Progress(n, fmt.Sprintf("Treasures in %s", city.Name))
	var created, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		jobSeed := master.Int63()
		g.Go(func() error {
			if err := s.seedOne(ctx, city, jobSeed); err != nil {
				failed.Add(1)
				observability.L(ctx).Error("treasure job failed", zap.String("city", city.Name), zap.Error(err))
			} else {
				created.Add(1)
			}
			_ = bar.Add(1)
			// failures are counted, never propagated to siblings
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	span.AddAttributes(attribute.Int64("seed.created", created.Load()), attribute.Int64("seed.failed", failed.Load()))
	return int(created.Load()), int(failed.Load())
}

func (s *Seeder) seedOne(ctx context.Context, city City, jobSeed int64) (err error) {
	done := s.opts.Metrics.TrackJob(city.Name)
	defer func() { done(err) }()

	f := gofakeit.New(jobSeed)
	creator := s.creators.Resolve(ctx, f)
	treasure := s.factory.BuildTreasure(f, creator, city)
	if s.opts.DryRun {
		return nil
	}
	return s.treasures.Create(ctx, treasure)
}

// Clear deletes every treasure. Dry runs report zero without touching storage.
func (s *Seeder) Clear(ctx context.Context) (int64, error) {
	if s.opts.DryRun {
		observability.L(ctx).Info("dry run: skipping treasure cleanup")
		return 0, nil
	}
	n, err := s.treasures.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear treasures: %w", err)
	}
	observability.L(ctx).Info("cleared existing treasures", zap.Int64("rows", n))
	return n, nil
}
