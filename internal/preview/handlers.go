package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"treasurehunt/internal/cache"
	"treasurehunt/internal/models"
	"treasurehunt/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Error: err.Error()}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	}
	return c.Status(status).JSON(response)
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case models.HasCode(err, models.CodeValidation):
		status = fiber.StatusBadRequest
	case models.HasCode(err, models.CodeNotFound):
		status = fiber.StatusNotFound
	}
	if status >= fiber.StatusInternalServerError {
		observability.L(c.UserContext()).Error("request error", zap.String("path", c.Path()), zap.Error(err))
	}
	return respondWithError(c, status, err)
}

func (s *Server) live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up"})
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := fiber.Map{"database": "up", "redis": "disabled"}
	status := fiber.StatusOK

	if err := s.pingDB(ctx); err != nil {
		checks["database"] = "down"
		status = fiber.StatusServiceUnavailable
		observability.L(ctx).Warn("readiness: database unavailable", zap.Error(err))
	}
	if s.redis != nil {
		checks["redis"] = "up"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// the cache is optional, so a down redis does not fail readiness
			checks["redis"] = "down"
		}
	}

	checks["status"] = "ready"
	if status != fiber.StatusOK {
		checks["status"] = "unavailable"
	}
	return c.Status(status).JSON(checks)
}

func (s *Server) pingDB(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func parseLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, models.NewValidationError("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}

func (s *Server) listTreasures(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var body json.RawMessage
	key := fmt.Sprintf("treasurehunt:preview:treasures:%d", limit)
	err = cache.Aside(ctx, s.redis, key, &body, listCacheTTL, func() error {
		treasures, err := s.treasures.List(ctx, limit)
		if err != nil {
			return err
		}
		body, err = json.Marshal(featureCollection(treasures))
		return err
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(body)
}

func featureCollection(treasures []models.Treasure) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(treasures))}
	for _, t := range treasures {
		fc.Features = append(fc.Features, t.Location.Feature(strconv.FormatUint(uint64(t.ID), 10), map[string]interface{}{
			"title":      t.Title,
			"creator":    t.CreatorName,
			"difficulty": t.Difficulty,
			"points":     t.Points,
			"is_found":   t.IsFound,
		}))
	}
	return fc
}
