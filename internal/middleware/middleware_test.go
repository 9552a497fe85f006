package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"treasurehunt/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextMiddleware_ReusesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(ContextMiddleware())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = observability.ExtractCorrelationID(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestContextMiddleware_GeneratesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
}

func TestStructuredLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	app := fiber.New()
	app.Use(ContextMiddleware(), StructuredLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "boom") })

	for _, path := range []string{"/ok", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	processed := logs.FilterMessage("request processed").All()
	require.Len(t, processed, 1)
	assert.Equal(t, "/ok", processed[0].ContextMap()["path"])
	assert.NotEmpty(t, processed[0].ContextMap()["correlation_id"])

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestTracingMiddleware_SetsTraceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Len(t, resp.Header.Get(TraceIDHeader), 32)
}
