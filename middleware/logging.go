package middleware

import (
	"time"

	"car-rental/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const traceIDHeader = "X-Trace-ID"

// RequestLogger attaches a child of base carrying a trace id to the request
// context and logs one line per request once the chain has finished.
func RequestLogger(base *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := base.GetChildLogger()
		l.UpdateContext(func(lc zerolog.Context) zerolog.Context {
			return lc.Str("trace_id", traceID)
		})
		c.SetUserContext(l.WithContext(c.UserContext()))
		c.Set(traceIDHeader, traceID)

		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.FromCtx(c).Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Send()

		return nil
	}
}
