// Package logger wraps zerolog.Logger with the constructors and
// context helpers used across the service.
//
// Request-scoped loggers travel in the fiber user context; services read
// them back with FromContext.
package logger

import (
	"context"
	"os"
	"runtime"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger struct {
	zerolog.Logger
}

// NewLogger returns a JSON logger writing to stdout with "role", "ts" and
// "func" fields on every entry.
func NewLogger(role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// Nop returns a logger that discards everything. Meant for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// FromContext returns the logger attached to ctx, or zerolog's disabled
// logger when none is attached. It never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromCtx is FromContext for a fiber request.
func FromCtx(c *fiber.Ctx) *Logger {
	return FromContext(c.UserContext())
}
