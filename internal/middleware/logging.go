// Package middleware provides the Fiber middleware used by the preview server.
package middleware

import (
	"time"

	"treasurehunt/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation ID in and out of a request.
const RequestIDHeader = "X-Request-ID"

// ContextMiddleware puts a correlation ID into the request context, reusing the
// caller's X-Request-ID when present, and echoes it on the response.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = observability.GenerateCorrelationID()
		}
		c.Set(RequestIDHeader, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware logging each request with zap.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}

		log := observability.L(c.UserContext())
		if err != nil {
			log.Error("request failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("request processed", fields...)
		}
		return err
	}
}
