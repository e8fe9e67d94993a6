package middleware

import (
	"time"

	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestLogger attaches the request id to the user context and logs one line
// per request. Mount it after requestid.New().
func RequestLogger(logg *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()

		ctx := c.UserContext()
		if rid, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && rid != "" {
			ctx = logg.WithRequestID(ctx, rid)
		}
		c.SetUserContext(ctx)

		chainErr := c.Next()

		status := c.Response().StatusCode()
		if chainErr != nil {
			if fe, ok := chainErr.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		entry := logg.WithFields(c.UserContext(), map[string]any{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(started).Milliseconds(),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			logg.Error(entry, "request failed", chainErr)
		case status >= fiber.StatusBadRequest:
			logg.Warn(entry, "request rejected")
		default:
			logg.Info(entry, "request completed")
		}
		return chainErr
	}
}
