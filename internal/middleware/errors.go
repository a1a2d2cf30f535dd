package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/response"
)

// ErrorHandler is the fiber.Config ErrorHandler. Framework errors keep
// their status; anything unclassified is logged and answered with 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if mapped := fromFiber(fiberErr); mapped != nil {
			return response.Error(c, mapped)
		}
		return c.Status(fiberErr.Code).JSON(response.ErrorEnvelope{Message: fiberErr.Message})
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.From(c.UserContext()).Error("unhandled error", logger.Err(err))
	}
	return response.Error(c, err)
}

func fromFiber(err *fiber.Error) error {
	switch err.Code {
	case fiber.StatusNotFound:
		return apperr.NotFound("Not found")
	case fiber.StatusRequestEntityTooLarge:
		return apperr.Validation("Request body too large")
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperr.Validation(err.Message)
	case fiber.StatusTooManyRequests:
		return apperr.New(apperr.ErrResourceExhausted, "Too many requests")
	case fiber.StatusInternalServerError:
		return apperr.Internal("Internal server error")
	default:
		return nil
	}
}
