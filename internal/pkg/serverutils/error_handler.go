package serverutils

import (
	"errors"

	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers as the JSON envelope
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := StatusFor(err)
		if code >= fiber.StatusInternalServerError && log != nil {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps an error to an HTTP status and a client-facing message
func StatusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, assistant.ErrUnsupportedFileType),
		errors.Is(err, assistant.ErrEmptyFileName),
		errors.Is(err, assistant.ErrUnknownMode),
		errors.Is(err, assistant.ErrEmptyQuestion),
		errors.Is(err, assistant.ErrMissingCredential):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, assistant.ErrNoActiveDocument):
		return fiber.StatusConflict, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
