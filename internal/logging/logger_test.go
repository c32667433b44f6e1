package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"Error": slog.LevelError,
	}
	for raw, expected := range cases {
		level, ok := ParseLevel(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, expected, level, raw)
	}

	level, ok := ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestSetupLevels(t *testing.T) {
	var out bytes.Buffer

	logger := Setup(Options{Level: "warn", Output: &out})
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), "key=value")
	assert.NotContains(t, out.String(), "time=")

	out.Reset()
	logger = Setup(Options{Level: "debug", Quiet: true, Output: &out})
	logger.Info("suppressed")
	logger.Warn("still shown")
	assert.NotContains(t, out.String(), "suppressed")
	assert.Contains(t, out.String(), "still shown")

	out.Reset()
	logger = Setup(Options{Level: "warn", Verbose: true, Output: &out})
	logger.Debug("details")
	assert.Contains(t, out.String(), "details")
}

func TestSetupWarnsOnUnknownLevel(t *testing.T) {
	var out bytes.Buffer

	Setup(Options{Level: "loud", Output: &out})
	assert.Contains(t, out.String(), "invalid log level configured")
}
