package serverutils

import (
	"errors"

	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) (int, string) {
	var fe *fiber.Error
	var ve *ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error()
	case errors.Is(err, store.ErrSessionExpired):
		return fiber.StatusGone, "Session expired"
	case errors.Is(err, store.ErrSessionNotFound):
		return fiber.StatusNotFound, "Session not found"
	case errors.Is(err, orchestrator.ErrTurnTimeout):
		return fiber.StatusServiceUnavailable, "The assistant took too long to answer, please try again"
	case errors.Is(err, orchestrator.ErrSessionLock):
		return fiber.StatusServiceUnavailable, "The conversation is busy, please try again"
	case errors.Is(err, orchestrator.ErrStageExecutionFailed):
		return fiber.StatusServiceUnavailable, "The assistant could not finish this step, please try again"
	case errors.Is(err, orchestrator.ErrInvalidMessage):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
