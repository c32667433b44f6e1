package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	settings, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, settings.LogLevel)
	assert.Equal(t, DefaultParallelism, settings.Parallel)
	assert.Equal(t, DefaultColorMode, settings.Color)
	assert.Equal(t, AppDirName, filepath.Base(settings.DataDir))
}

func TestLoadSettingsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	content := "data_dir: " + filepath.Join(dir, "stacks") + "\nlog_level: INFO\nparallel: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CMDSTACK_PARALLEL", "2")

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "stacks"), settings.DataDir)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, 2, settings.Parallel)
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	_, err := LoadSettings(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("parallel: 0\n"), 0o644))
	_, err = LoadSettings(path)
	assert.Error(t, err)
}

func TestSettingsPathHonorsEnv(t *testing.T) {
	t.Setenv(SettingsEnvVar, "/tmp/custom.yaml")

	path, err := SettingsPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)
}
