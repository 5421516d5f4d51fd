package store

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL bounds and environment overrides.
const (
	DefaultTTLSeconds     = 3600
	MinTTLSeconds         = 60
	MaxTTLSeconds         = 604800
	DefaultCacheMaxSizeMB = 100

	minutesPerHour = 60
	hoursPerDay    = 24

	EnvTTLSeconds   = "FEDIPAGE_CACHE_TTL_SECONDS"
	EnvCacheEnabled = "FEDIPAGE_CACHE_ENABLED"
	EnvCacheDir     = "FEDIPAGE_CACHE_DIR"
)

// ErrInvalidTTL is returned for TTLs outside [MinTTLSeconds, MaxTTLSeconds].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// TTLFromEnv returns FEDIPAGE_CACHE_TTL_SECONDS when it is a valid TTL,
// otherwise fallback.
func TTLFromEnv(fallback int) int {
	v := os.Getenv(EnvTTLSeconds)
	if v == "" {
		return fallback
	}
	ttl, err := strconv.Atoi(v)
	if err != nil || ttl < MinTTLSeconds || ttl > MaxTTLSeconds {
		return fallback
	}
	return ttl
}

// EnabledFromEnv returns FEDIPAGE_CACHE_ENABLED when set and parseable,
// otherwise fallback.
func EnabledFromEnv(fallback bool) bool {
	v := os.Getenv(EnvCacheEnabled)
	if v == "" {
		return fallback
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return enabled
}

// DirFromEnv returns FEDIPAGE_CACHE_DIR or fallback.
func DirFromEnv(fallback string) string {
	if v := os.Getenv(EnvCacheDir); v != "" {
		return v
	}
	return fallback
}

// FormatDuration formats a duration compactly: "45s", "30m", "1h30m", "2d3h".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseTTL accepts integer seconds ("3600") or a duration ("1h30m").
func ParseTTL(s string) (int, error) {
	seconds, err := strconv.Atoi(s)
	if err != nil {
		d, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", durErr)
		}
		seconds = int(d.Seconds())
	}
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return seconds, nil
}
