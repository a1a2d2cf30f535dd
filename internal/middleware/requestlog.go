package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an id, puts a scoped logger on the
// user context and logs the outcome once the chain has run. Errors from
// the chain are rendered here so the logged status is the one sent.
func RequestLogger(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := strings.TrimSpace(c.Get(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		reqLog := logger.L().With(
			logger.RequestID(requestID),
			logger.Method(c.Method()),
			logger.Path(c.Path()),
		)
		c.SetUserContext(logger.ToContext(c.UserContext(), reqLog))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		c.Set("X-Process-Time", strconv.FormatFloat(elapsed.Seconds(), 'f', 4, 64))

		route := c.Route().Path
		m.ObserveRequest(c.Method(), route, status, elapsed)

		fields := []zap.Field{
			logger.Status(status),
			logger.Duration(elapsed),
			logger.ClientIP(c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			reqLog.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			reqLog.Warn("request completed", fields...)
		default:
			reqLog.Info("request completed", fields...)
		}
		return nil
	}
}
