package logger

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level))
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Logger{zap: zap.New(core)}

	l.Debug("hidden")
	l.Info("work log stored")
	l.Warning("cache unavailable", nil)
	l.Error("could not publish", errors.New("connection closed"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "work log stored", entries[0].Message)
	assert.Empty(t, entries[1].Context)
	assert.Equal(t, "connection closed", entries[2].ContextMap()["error"])
}

func TestNew(t *testing.T) {
	l, err := New(true, "warn")
	require.NoError(t, err)
	assert.True(t, l.zap.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, l.zap.Core().Enabled(zapcore.InfoLevel))
}
