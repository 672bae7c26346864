// Package logger wires log/slog to a zap core so that every slog call site
// emits structured JSON.
package logger

import (
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Setup builds the production zap logger and installs it as the slog default.
// The returned function flushes buffered entries and should be deferred by main.
func Setup(level string) (func(), error) {
	zl, err := NewZap(level)
	if err != nil {
		return func() {}, err
	}
	slog.SetDefault(NewSlog(zl.Core()))
	return func() { _ = zl.Sync() }, nil
}

// NewZap returns a JSON logger writing to stderr at the given level.
func NewZap(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	// stdout carries command output
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// NewSlog returns a slog.Logger backed by core.
func NewSlog(core zapcore.Core) *slog.Logger {
	return slog.New(zapslog.NewHandler(core))
}

// ParseLevel maps LOG_LEVEL values to zap levels; unknown values mean info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
