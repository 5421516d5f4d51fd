package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedipage/fedipage/internal/logging"
)

func TestGlobalConfig(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)
	assert.NoError(t, GlobalConfigError())

	assert.Same(t, cfg, GetGlobalConfig())

	ResetGlobalConfigForTest()
	assert.NotSame(t, cfg, GetGlobalConfig())
}

func TestInitGlobalConfig_FromPath(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Cleanup(ResetGlobalConfigForTest)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  default_format: json\n"), 0600))

	require.NoError(t, InitGlobalConfig(path))
	assert.Equal(t, "json", GetDefaultOutputFormat())
	assert.Equal(t, path, GetGlobalConfig().Path())
}

func TestInitGlobalConfig_BadFileFallsBackToDefaults(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvInstance, "https://env.example")
	t.Cleanup(ResetGlobalConfigForTest)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: ["), 0600))

	err := InitGlobalConfig(path)
	require.Error(t, err)
	assert.Equal(t, err, GlobalConfigError())

	cfg := GetGlobalConfig()
	assert.Equal(t, DefaultOutputFormat, cfg.Output.DefaultFormat)
	assert.Equal(t, "https://env.example", cfg.Instance.URL)
	assert.Equal(t, path, cfg.Path())
}

func TestGetConfigDir(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(EnvHome, dir)
		got, err := GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("home default", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(EnvHome, "")
		t.Setenv("HOME", home)
		got, err := GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".fedipage"), got)
	})
}

func TestEnsureConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "fedipage")
	t.Setenv(EnvHome, dir)

	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureLogDir(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	require.NoError(t, EnsureLogDir(), "no log file configured")

	logFile := filepath.Join(t.TempDir(), "logs", "fedipage.log")
	GetGlobalConfig().Logging.File = logFile
	require.NoError(t, EnsureLogDir())

	_, err := os.Stat(filepath.Dir(logFile))
	assert.NoError(t, err)
}

func TestGetLoggingConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	lc := GetLoggingConfig()
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "info", GetGlobalConfig().Logging.Level, "global config is not mutated")
}

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json"}
	assert.Equal(t, logging.Config{Level: "debug", Format: "json", Output: logging.OutputStderr}, lc.ToLoggingConfig())

	lc.File = "/var/log/fedipage.log"
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/var/log/fedipage.log", got.File)
}
