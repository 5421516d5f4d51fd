// Package logging builds the zerolog loggers used across fedipage and carries
// them, together with a per-command trace ID, through context.Context.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output and format names accepted in Config.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"

	FormatJSON    = "json"
	FormatConsole = "console"
	FormatText    = "text"
)

// Config describes how the root logger is built.
type Config struct {
	Level  string
	Format string
	Output string
	File   string
	Caller bool
}

// LogPathResult is returned by NewLoggerWithPath. When file output was
// requested but could not be opened, the logger falls back to stderr and
// FallbackUsed is set.
type LogPathResult struct {
	Logger         zerolog.Logger
	FilePath       string
	UsingFile      bool
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file, if any.
func (r *LogPathResult) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ParseLevel parses level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger builds a logger writing to w.
func NewLogger(cfg Config, w io.Writer) zerolog.Logger {
	var out io.Writer = w
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatText:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// NewLoggerWithPath builds the root logger for cfg, opening the log file when
// Output is "file".
func NewLoggerWithPath(cfg Config) LogPathResult {
	switch cfg.Output {
	case OutputStdout:
		return LogPathResult{Logger: NewLogger(cfg, os.Stdout)}
	case OutputFile:
	default:
		return LogPathResult{Logger: NewLogger(cfg, os.Stderr)}
	}

	if cfg.File == "" {
		return LogPathResult{
			Logger:         NewLogger(cfg, os.Stderr),
			FallbackUsed:   true,
			FallbackReason: "no log file configured",
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return LogPathResult{
			Logger:         NewLogger(cfg, os.Stderr),
			FallbackUsed:   true,
			FallbackReason: err.Error(),
		}
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return LogPathResult{
			Logger:         NewLogger(cfg, os.Stderr),
			FallbackUsed:   true,
			FallbackReason: err.Error(),
		}
	}

	// Files always get JSON lines.
	fileCfg := cfg
	fileCfg.Format = FormatJSON
	return LogPathResult{
		Logger:    NewLogger(fileCfg, f),
		FilePath:  cfg.File,
		UsingFile: true,
		file:      f,
	}
}

// ComponentLogger returns l with a component field.
func ComponentLogger(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// PrintLogPathMessage tells the user where logs are going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning reports that file logging could not be enabled.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}
