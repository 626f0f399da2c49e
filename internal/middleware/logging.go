package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/wichananm65/campus-market-backend/internal/auth"
)

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := log.Fields{
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     c.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}
		if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
			fields["request_id"] = rid
		}
		if id, idErr := auth.UserID(c); idErr == nil {
			fields["user_id"] = id.String()
		}

		entry := log.WithFields(fields)
		switch {
		case err != nil:
			entry.WithError(err).Warn("request")
		case c.Response().StatusCode() >= fiber.StatusInternalServerError:
			entry.Error("request")
		default:
			entry.Info("request")
		}
		return err
	}
}
