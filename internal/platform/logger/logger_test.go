package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thinkex/clusters-api/internal/config"
)

func TestSetupAcceptsAllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
		log, err := Setup(config.ServerConfig{Port: 8080, LogLevel: level})
		assert.NoError(t, err, "level %q", level)
		assert.NotNil(t, log, "level %q", level)
	}
}

func TestSetupFallsBackOnInvalidLevel(t *testing.T) {
	log, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "verbose"})
	assert.NoError(t, err)
	assert.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Without an attached logger, the default is returned.
	assert.Equal(t, slog.Default(), FromContext(ctx))

	attached := slog.Default().With("trace_id", "abc")
	ctx = WithLogger(ctx, attached)
	assert.Equal(t, attached, FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	def := slog.Default().With("component", "test")

	// No logger in context: the provided default wins.
	assert.Equal(t, def, FromContextOrDefault(context.Background(), def))

	// Logger in context: it wins over the provided default.
	attached := slog.Default().With("trace_id", "abc")
	ctx := WithLogger(context.Background(), attached)
	assert.Equal(t, attached, FromContextOrDefault(ctx, def))

	// Nil default falls back to the process default.
	assert.Equal(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
}
