package middlewares

import (
	"errors"

	"mandi-backend/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorLogger is used for unexpected failures; main replaces it with the
// configured logger.
var ErrorLogger = logrus.StandardLogger()

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (400 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"error":   services.CodeValidation,
			"errors":  out,
		})
	}

	// 3) Engine errors
	var se *services.Error
	if errors.As(err, &se) {
		body := fiber.Map{"message": se.Message, "error": se.Code}
		status := fiber.StatusInternalServerError
		switch {
		case services.IsNotFound(err):
			status = fiber.StatusNotFound
		case errors.Is(err, services.ErrConflict):
			status = fiber.StatusConflict
		case services.IsClientError(err):
			status = fiber.StatusBadRequest
		case services.IsRetryable(err):
			body["retryable"] = true
		}
		if status >= fiber.StatusInternalServerError {
			ErrorLogger.WithFields(logrus.Fields{"path": c.Path(), "code": se.Code}).WithError(err).Error("request failed")
		}
		return c.Status(status).JSON(body)
	}

	// 4) Unknown errors (500)
	ErrorLogger.WithField("path", c.Path()).WithError(err).Error("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
