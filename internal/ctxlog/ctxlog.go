// Package ctxlog carries a slog.Logger in a context.Context so every
// component of the shell logs through the same handler. Diagnostic
// logging is separate from the shell's own output protocol: it goes to
// stderr and stays silent unless GOSH_LOG_LEVEL lowers the level.
package ctxlog

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type loggerKey struct{}

// LevelVar holds the current log level. It defaults to warn so an
// interactive session prints nothing but the shell protocol itself.
var LevelVar = &slog.LevelVar{}

// DefaultLogger writes text records to stderr.
var DefaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(levelFromEnv())
}

// New returns a context carrying logger. A nil logger selects
// DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if
// the context carries none.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

func levelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv("GOSH_LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
