package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/olopez/tasknest/internal/logger"
)

// RequestLogger logs one line per handled request.
func RequestLogger(l *logger.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		l.Info("request handled",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String())

		return err
	}
}
