package config

import (
	"os"

	"github.com/fedipage/fedipage/internal/logging"
)

// ToLoggingConfig converts LoggingConfig to logging.Config for use with the
// internal/logging package.
//
// The conversion applies these rules:
//   - Level, Format are copied directly
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns the Logging section of the global configuration
// with FEDIPAGE_LOG_LEVEL and FEDIPAGE_LOG_FORMAT applied. Flag overrides
// such as --debug are applied by the caller.
func GetLoggingConfig() LoggingConfig {
	lc := GetGlobalConfig().Logging
	if v := os.Getenv(EnvLogLevel); v != "" {
		lc.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		lc.Format = v
	}
	return lc
}
