package middleware

import (
	"errors"

	"github.com/arzan03/FilesManager/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusAndMessage maps a service error onto its HTTP status and client message.
func statusAndMessage(err error) (int, string, bool) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Message, true
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized", true
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "Not found", true
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusBadRequest, "Already exist", true
	}
	return 0, "", false
}

// StatusOf returns the HTTP status of a known service error.
func StatusOf(err error) (int, bool) {
	code, _, ok := statusAndMessage(err)
	return code, ok
}

// ErrorHandler renders every error as {"error": message}. Unknown errors are
// logged and hidden behind a generic 500.
func ErrorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if code, msg, ok := statusAndMessage(err); ok {
			return c.Status(code).JSON(fiber.Map{"error": msg})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
