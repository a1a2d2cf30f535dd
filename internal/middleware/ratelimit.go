package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/ratelimit"
	"github.com/saeid-a/FitTrackBack/internal/response"
)

// RateLimit counts requests per client IP. A limiter backend failure lets
// the request through.
func RateLimit(limiter ratelimit.Limiter, max int, m *metrics.Metrics) fiber.Handler {
	if limiter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		res, err := limiter.Allow(c.UserContext(), "ip:"+c.IP())
		if err != nil {
			logger.From(c.UserContext()).Warn("rate limiter unavailable", logger.Err(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(max))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		if !res.Allowed {
			seconds := int(res.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			m.RateLimited(c.Path())
			return response.Error(c, apperr.New(apperr.ErrResourceExhausted, "Too many requests"))
		}
		return c.Next()
	}
}
