package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFallsBackToDefault(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
}

func TestNewCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := New(context.Background(), logger)
	assert.Same(t, logger, Logger(ctx))

	Debug(ctx, "hello", "k", "v")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNewNilLoggerUsesDefault(t *testing.T) {
	ctx := New(context.Background(), nil)
	assert.Same(t, DefaultLogger, Logger(ctx))
}
