// Package log builds the zap logger used by the CLI and the loaders.
// Library packages never log; they return errors.
package log

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var registerOnce sync.Once

// Options configures the logger.
type Options struct {
	Debug bool
	// Color selects the colour console encoder; plain console otherwise.
	Color bool
	// OutputPaths defaults to stderr so stdout stays free for results.
	OutputPaths []string
}

// Config returns the zap config for opts. Info level by default; debug adds
// caller info and stack traces.
func Config(opts Options) zap.Config {
	registerOnce.Do(func() {
		_ = zap.RegisterEncoder("colorConsole", func(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
			return NewColor(cfg), nil
		})
	})

	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if opts.Color {
		cfg.Encoding = "colorConsole"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = ""
	cfg.OutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeCaller = nil
	if opts.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.DisableStacktrace = false
		cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	return cfg
}

// New builds a logger for opts.
func New(opts Options) (*zap.Logger, error) {
	logger, err := Config(opts).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build config for logger: %w", err)
	}
	return logger, nil
}

// LogError logs err under msg. Cancellation is not an error worth reporting.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if logger == nil || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Error(msg, fields...)
}
