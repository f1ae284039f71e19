package log

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigLevels(t *testing.T) {
	cfg := Config(Options{})
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.True(t, cfg.DisableStacktrace)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)

	cfg = Config(Options{Debug: true, Color: true})
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	assert.False(t, cfg.DisableStacktrace)
	assert.Equal(t, "colorConsole", cfg.Encoding)
}

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filediff.log")
	logger, err := New(Options{Color: true, OutputPaths: []string{path}})
	require.NoError(t, err)
	logger.Info("loaded", zap.String("file", "a.csv"))
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "a.csv")
	assert.False(t, strings.Contains(out, `\u001b`), "escape sequences must not be quoted")
}

func TestLogError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogError(logger, errors.New("boom"), "failed to load", zap.String("file", "x.json"))
	LogError(logger, fmt.Errorf("wrapped: %w", context.Canceled), "ignored")
	LogError(nil, errors.New("boom"), "no logger")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "failed to load", entries[0].Message)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "x.json", entries[0].ContextMap()["file"])
}
