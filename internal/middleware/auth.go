package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/response"
)

const (
	LocalUser   = "user"
	LocalUserID = "user_id"
)

// AuthRequired resolves the bearer token to an active user and stores it
// in Locals for the handlers behind it.
func AuthRequired(guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _, err := guard.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				// store failures go to ErrorHandler, which logs them
				return err
			}
			if apperr.Status(err) == fiber.StatusUnauthorized {
				c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			}
			return response.Error(c, err)
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)

		ctx := c.UserContext()
		c.SetUserContext(logger.ToContext(ctx, logger.From(ctx).With(
			logger.UserID(user.ID),
			logger.TenantID(user.TenantID),
		)))
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.RequireAdmin(CurrentUser(c)); err != nil {
			return response.Error(c, err)
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}
