// Package preview serves a read-only HTTP view of seeded treasures.
package preview

import (
	"context"
	"fmt"
	"time"

	"treasurehunt/internal/middleware"
	"treasurehunt/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName = "treasure-preview"

	defaultListLimit = 100
	maxListLimit     = 1000

	listCacheTTL     = 10 * time.Second
	rateLimitPerMin  = 120
	readinessTimeout = 2 * time.Second
)

// Server holds the Fiber app and its dependencies.
type Server struct {
	app       *fiber.App
	db        *gorm.DB
	redis     *redis.Client
	treasures repository.TreasureRepository
}

// Config wires a Server.
type Config struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Treasures repository.TreasureRepository
	// Registry receives the HTTP metrics; nil uses the default registry.
	Registry *prometheus.Registry
}

// NewServer builds the app and registers every route.
func NewServer(cfg Config) *Server {
	s := &Server{
		db:        cfg.DB,
		redis:     cfg.Redis,
		treasures: cfg.Treasures,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	var prom *fiberprometheus.FiberPrometheus
	if cfg.Registry != nil {
		prom = fiberprometheus.NewWithRegistry(cfg.Registry, serviceName, "treasurehunt", "preview", nil)
	} else {
		prom = fiberprometheus.New(serviceName)
	}
	prom.RegisterAt(s.app, "/metrics")

	s.app.Use(
		middleware.ContextMiddleware(),
		middleware.TracingMiddleware(),
		middleware.StructuredLogger(),
		prom.Middleware,
	)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	health := s.app.Group("/health")
	health.Get("/live", s.live)
	health.Get("/ready", s.ready)

	api := s.app.Group("/api")
	if s.redis != nil {
		api.Use(middleware.RateLimit(s.redis, rateLimitPerMin, time.Minute, "api"))
	}
	api.Get("/treasures", s.listTreasures)
}

// App exposes the Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	zap.L().Info("preview server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown preview server: %w", err)
	}
	return nil
}
