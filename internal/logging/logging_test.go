package logging

import (
	"github.com/osmike/jobrun/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"testing"
)

func TestLevel(t *testing.T) {
	t.Setenv(domain.LOG_LEVEL_ENV, "")

	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.raw), "level %q", tt.raw)
	}
}

func TestLevel_FromEnv(t *testing.T) {
	t.Setenv(domain.LOG_LEVEL_ENV, "debug")
	assert.Equal(t, zapcore.DebugLevel, Level(""))
	assert.Equal(t, zapcore.ErrorLevel, Level("error"), "config wins over env")
}

func TestNew(t *testing.T) {
	t.Setenv(domain.LOG_LEVEL_ENV, "")

	l, err := New(domain.Config{LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New(domain.Config{Name: "files", Development: true, LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
