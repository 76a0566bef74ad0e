package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"silent", slog.Level(1000)},
		{"none", slog.Level(1000)},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLogLevelFlag(t *testing.T) {
	flag := &logLevelFlag{value: "info"}

	assert.False(t, flag.IsSet())
	assert.Equal(t, "info", flag.String())

	require.NoError(t, flag.Set("debug"))
	assert.True(t, flag.IsSet())
	assert.Equal(t, "debug", flag.String())

	err := flag.Set("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value")
}
