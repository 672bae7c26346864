package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewSlog_ForwardsToZap(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	l := NewSlog(core)

	l.Debug("dropped")
	l.Info("fetch completed", "op", "quote", "success", true)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "fetch completed", entry.Message)
	assert.Equal(t, "quote", entry.ContextMap()["op"])
	assert.Equal(t, true, entry.ContextMap()["success"])
}

func TestNewZap_Level(t *testing.T) {
	t.Parallel()

	zl, err := NewZap("error")
	require.NoError(t, err)
	assert.False(t, zl.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, zl.Core().Enabled(zapcore.ErrorLevel))
}
