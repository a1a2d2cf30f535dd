package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/middleware"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const dateLayout = "2006-01-02"

func currentUser(c *fiber.Ctx) (*models.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	return user, nil
}

func requestMeta(c *fiber.Ctx) models.RequestMeta {
	return models.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: string(c.Request().Header.UserAgent()),
	}
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(validationMessage, apperr.FieldError{Field: name, Message: "must be a positive integer"})
	}
	return id, nil
}

// queryTime accepts RFC3339 or a bare date. A bare upper bound covers the
// whole day.
func queryTime(c *fiber.Ctx, name string, upper bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.Validation(validationMessage, apperr.FieldError{Field: name, Message: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"})
	}
	if upper {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}

func queryBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation(validationMessage, apperr.FieldError{Field: name, Message: "must be true or false"})
	}
	return &v, nil
}

func queryInt64(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, apperr.Validation(validationMessage, apperr.FieldError{Field: name, Message: "must be a positive integer"})
	}
	return &v, nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
