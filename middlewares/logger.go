package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request with status, latency and actor.
// Like fiber's own logger it hands chain errors to the app error handler
// first, so the logged status is the one the client gets.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    status,
			"latencyMs": time.Since(start).Milliseconds(),
			"actor":     Actor(c),
		})
		if chainErr != nil {
			entry = entry.WithError(chainErr)
		}
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request")
		} else {
			entry.Info("request")
		}
		return nil
	}
}
