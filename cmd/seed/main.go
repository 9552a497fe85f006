// Command seed fills the treasures table with fake treasures scattered around
// Bogotá and Cartagena, and can serve a read-only preview of the result.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treasurehunt/internal/bootstrap"
	"treasurehunt/internal/config"
	"treasurehunt/internal/observability"
	"treasurehunt/internal/repository"
	"treasurehunt/internal/seed"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	serviceName    = "treasure-seed"
	serviceVersion = "1.0.0"
	pushJobName    = "treasurehunt_seed"
)

// runFlags are the switches that only make sense for a single invocation.
type runFlags struct {
	Clean      bool
	DryRun     bool
	SkipBcrypt bool
	NoProgress bool
	Migrate    bool
}

// app carries state set up by PersistentPreRunE.
type app struct {
	cfg           *config.Config
	flags         runFlags
	shutdownTrace func(context.Context) error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with fake treasures",
		Long: `Generate fake treasures near each configured city and store them.

Every flag without an explicit value falls back to config.yml or the
matching environment variable (SEED_TOTAL, SEED_WORKERS, SEED_RADIUS_KM,
SEED_RANDOM_SEED, SEED_CITIES).

Examples:
  # Seed 30 treasures, 15 per city
  seed

  # Replace existing treasures with a reproducible set of 200
  seed --clean --total 200 --random-seed 42

  # Build records without touching the database
  seed --dry-run --no-progress`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			_, err := a.runSeed(ctx, cmd.OutOrStdout())
			return err
		},
	}

	f := root.Flags()
	f.Int("total", seed.DefaultTotal, "total number of treasures, split evenly across cities")
	f.Int("workers", seed.DefaultWorkers, "number of concurrent build-and-save workers")
	f.Float64("radius-km", seed.DefaultRadiusKM, "maximum distance from the city centre in kilometres")
	f.Int64("random-seed", 0, "seed for reproducible output (0 seeds from the clock)")
	f.String("cities", "", `cities to seed as "name:lat:lng;name:lat:lng" (default Bogotá and Cartagena)`)
	f.BoolVar(&a.flags.Clean, "clean", false, "delete existing treasures before seeding")
	f.BoolVar(&a.flags.DryRun, "dry-run", false, "build records without persisting them")
	f.BoolVar(&a.flags.SkipBcrypt, "skip-bcrypt", false, "store the bootstrap creator password unhashed")
	f.BoolVar(&a.flags.NoProgress, "no-progress", false, "disable progress bars")
	f.BoolVar(&a.flags.Migrate, "migrate", false, "run schema migrations even in production")

	for key, name := range map[string]string{
		"SEED_TOTAL":       "total",
		"SEED_WORKERS":     "workers",
		"SEED_RADIUS_KM":   "radius-km",
		"SEED_RANDOM_SEED": "random-seed",
		"SEED_CITIES":      "cities",
	} {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}

	root.AddCommand(newPreviewCmd(a))
	return root
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	if _, err := observability.NewLogger(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.shutdownTrace = shutdown
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) {
	if a.shutdownTrace != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTrace(ctx); err != nil {
			zap.L().Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	_ = zap.L().Sync()
}

func (a *app) seedOptions(metrics *observability.SeedMetrics) (seed.Options, error) {
	cities, err := seed.ParseCities(a.cfg.SeedCities)
	if err != nil {
		return seed.Options{}, fmt.Errorf("invalid SEED_CITIES: %w", err)
	}
	opts := seed.Options{
		Cities:     cities,
		Total:      a.cfg.SeedTotal,
		Workers:    a.cfg.SeedWorkers,
		RadiusKM:   a.cfg.SeedRadiusKM,
		RandomSeed: a.cfg.SeedRandomSeed,
		DryRun:     a.flags.DryRun,
		SkipBcrypt: a.flags.SkipBcrypt,
		Metrics:    metrics,
	}
	if !a.flags.NoProgress {
		opts.Progress = seed.TerminalProgress(nil)
	}
	return opts, nil
}

func (a *app) runSeed(ctx context.Context, out io.Writer) (seed.Summary, error) {
	ctx = observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())
	log := observability.L(ctx)

	reg := prometheus.NewRegistry()
	opts, err := a.seedOptions(observability.NewSeedMetrics(reg))
	if err != nil {
		return seed.Summary{}, err
	}

	var (
		treasures repository.TreasureRepository
		users     repository.UserRepository
	)
	if !opts.DryRun {
		rt, err := bootstrap.InitRuntime(a.cfg, bootstrap.Options{Migrate: a.flags.Migrate})
		if err != nil {
			return seed.Summary{}, err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				log.Warn("failed to close runtime", zap.Error(err))
			}
		}()
		treasures, users = rt.Treasures, rt.Users
	}

	s := seed.NewSeeder(treasures, users, opts)
	log.Info("seeding treasures",
		zap.Int("total", opts.Total),
		zap.Int("per_city", s.Options().PerCity()),
		zap.Int("workers", s.Options().Workers),
		zap.Float64("radius_km", s.Options().RadiusKM),
		zap.Int64("random_seed", s.Options().RandomSeed),
		zap.Bool("dry_run", opts.DryRun),
	)

	if a.flags.Clean {
		if _, err := s.Clear(ctx); err != nil {
			return seed.Summary{}, err
		}
	}

	summary, runErr := s.Run(ctx)
	fmt.Fprintln(out, summary.String())
	if summary.Failed > 0 {
		fmt.Fprintf(out, "%d treasures failed to save\n", summary.Failed)
	}

	if a.cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := observability.Push(pushCtx, a.cfg.PushgatewayURL, pushJobName, reg); err != nil {
			log.Warn("failed to push metrics", zap.Error(err))
		}
	}

	return summary, runErr
}
