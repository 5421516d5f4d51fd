package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects GlobalConfig and globalConfigErr
var globalConfigErr error       //nolint:gochecknoglobals // Load error from the last initialization

// InitGlobalConfig loads the configuration from path, or the default
// location when path is empty, and installs it as the global config. If
// loading fails the defaults are installed and the error is returned.
func InitGlobalConfig(path string) error {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	cfg, err := Load(path)
	if err != nil {
		cfg = New()
		if path != "" {
			cfg.SetPath(path)
		}
		cfg.applyEnv()
	}
	GlobalConfig = cfg
	globalConfigErr = err
	return err
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigErr = nil
}

// GetGlobalConfig returns the global configuration, loading it from the
// default location if needed.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	cfg := GlobalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	_ = InitGlobalConfig("")

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GlobalConfigError returns the error from the last load, if any.
func GlobalConfigError() error {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfigErr
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// EnsureConfigDir ensures the fedipage configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// EnsureLogDir creates the parent directory of the configured log file.
// If no log file is configured, it does nothing.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	if cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// GetConfigDir returns the fedipage configuration directory: $FEDIPAGE_HOME
// or ~/.fedipage.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".fedipage"), nil
}
