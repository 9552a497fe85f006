package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treasurehunt/internal/bootstrap"
	"treasurehunt/internal/preview"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Serve seeded treasures as GeoJSON",
		Long: `Serve a read-only HTTP view of stored treasures on PREVIEW_PORT.

Routes:
  GET /health/live
  GET /health/ready
  GET /api/treasures?limit=N
  GET /metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runPreview(ctx)
		},
	}
}

func (a *app) runPreview(ctx context.Context) error {
	rt, err := bootstrap.InitRuntime(a.cfg, bootstrap.Options{Migrate: a.flags.Migrate})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	srv := preview.NewServer(preview.Config{DB: rt.DB, Redis: rt.Redis, Treasures: rt.Treasures})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(":" + a.cfg.PreviewPort)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}
