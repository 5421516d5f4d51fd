package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/fedipage/fedipage/internal/paging"
)

// Defaults applied by New.
const (
	DefaultPageSize       = 40
	MaxPageSize           = 80
	DefaultTimeoutSeconds = 30
	DefaultCacheTTL       = 3600
	DefaultCacheMaxSizeMB = 100
	DefaultOutputFormat   = "table"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	configFileName        = "config.yaml"
)

// Environment variables read by fedipage.
const (
	EnvHome      = "FEDIPAGE_HOME"
	EnvInstance  = "FEDIPAGE_INSTANCE"
	EnvToken     = "FEDIPAGE_TOKEN"
	EnvLogLevel  = "FEDIPAGE_LOG_LEVEL"
	EnvLogFormat = "FEDIPAGE_LOG_FORMAT"
)

// Errors returned by Get, Set and Validate.
var (
	ErrUnknownKey    = errors.New("unknown config key")
	ErrInvalidValue  = errors.New("invalid config value")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the fedipage configuration file.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Paging   PagingConfig   `yaml:"paging"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`

	path string
}

// InstanceConfig identifies the server and credentials.
type InstanceConfig struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token,omitempty"`
	UserAgent      string `yaml:"user_agent,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PagingConfig tunes list loading.
type PagingConfig struct {
	PageSize   int           `yaml:"page_size"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	MaxPages   int           `yaml:"max_pages"`
}

// CacheConfig controls the local record store.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	Offline    bool   `yaml:"offline"`
}

// OutputConfig holds rendering defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig holds logging defaults.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// New returns a configuration populated with defaults and bound to the
// default config file path.
func New() *Config {
	cfg := &Config{
		Paging: PagingConfig{
			PageSize:   DefaultPageSize,
			RetryDelay: paging.DefaultRetryDelay,
		},
		Instance: InstanceConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: DefaultCacheTTL,
			MaxSizeMB:  DefaultCacheMaxSizeMB,
		},
		Output: OutputConfig{DefaultFormat: DefaultOutputFormat},
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
	if dir, err := GetConfigDir(); err == nil {
		cfg.path = filepath.Join(dir, configFileName)
	}
	return cfg
}

// Load reads the configuration at path over the defaults and applies
// environment overrides. A missing file is not an error. An empty path
// selects the default location.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile is Load without environment overrides. Commands that save the
// configuration back use it so env values never end up in the file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		cfg.path = path
	}

	if cfg.path != "" {
		err := ShallowMergeYAML(cfg, cfg.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvInstance); v != "" {
		c.Instance.URL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Instance.Token = v
	}
}

// Path returns the file the configuration is saved to.
func (c *Config) Path() string {
	return c.path
}

// SetPath changes the file the configuration is saved to.
func (c *Config) SetPath(path string) {
	c.path = path
}

// Save writes the configuration atomically with owner-only permissions.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config path not set")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(c.path), 0o700); mkdirErr != nil {
		return fmt.Errorf("creating config directory: %w", mkdirErr)
	}

	tmpPath := c.path + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing config temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, c.path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming config temp file: %w", renameErr)
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Instance.TimeoutSeconds) * time.Second
}

// CacheDir returns the record store directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Directory != "" {
		return c.Cache.Directory, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// setting binds a dotted key to a Config field.
type setting struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

//nolint:gochecknoglobals // Static key table for Get/Set.
var settings = map[string]setting{
	"instance.url": {
		get: func(c *Config) string { return c.Instance.URL },
		set: func(c *Config, v string) error { c.Instance.URL = strings.TrimRight(v, "/"); return nil },
	},
	"instance.token": {
		get:    func(c *Config) string { return c.Instance.Token },
		set:    func(c *Config, v string) error { c.Instance.Token = v; return nil },
		secret: true,
	},
	"instance.user_agent": {
		get: func(c *Config) string { return c.Instance.UserAgent },
		set: func(c *Config, v string) error { c.Instance.UserAgent = v; return nil },
	},
	"instance.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Instance.TimeoutSeconds) },
		set: intSetter(func(c *Config) *int { return &c.Instance.TimeoutSeconds }),
	},
	"paging.page_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Paging.PageSize) },
		set: intSetter(func(c *Config) *int { return &c.Paging.PageSize }),
	},
	"paging.retry_delay": {
		get: func(c *Config) string { return c.Paging.RetryDelay.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a duration", ErrInvalidValue, v)
			}
			c.Paging.RetryDelay = d
			return nil
		},
	},
	"paging.max_pages": {
		get: func(c *Config) string { return strconv.Itoa(c.Paging.MaxPages) },
		set: intSetter(func(c *Config) *int { return &c.Paging.MaxPages }),
	},
	"cache.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Enabled) },
		set: boolSetter(func(c *Config) *bool { return &c.Cache.Enabled }),
	},
	"cache.directory": {
		get: func(c *Config) string { return c.Cache.Directory },
		set: func(c *Config, v string) error { c.Cache.Directory = v; return nil },
	},
	"cache.ttl_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.TTLSeconds) },
		set: intSetter(func(c *Config) *int { return &c.Cache.TTLSeconds }),
	},
	"cache.max_size_mb": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.MaxSizeMB) },
		set: intSetter(func(c *Config) *int { return &c.Cache.MaxSizeMB }),
	},
	"cache.offline": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Offline) },
		set: boolSetter(func(c *Config) *bool { return &c.Cache.Offline }),
	},
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error { c.Output.DefaultFormat = strings.ToLower(v); return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = strings.ToLower(v); return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = strings.ToLower(v); return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
}

func intSetter(field func(c *Config) *int) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(c *Config) *bool) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
		}
		*field(c) = b
		return nil
	}
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under a dotted key such as "paging.page_size".
func (c *Config) Get(key string) (string, error) {
	s, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.get(c), nil
}

// Set parses value and stores it under a dotted key. The result is not
// validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.set(c, value)
}

// List returns every key with its value. Secrets are masked.
func (c *Config) List() map[string]string {
	out := make(map[string]string, len(settings))
	for k, s := range settings {
		v := s.get(c)
		if s.secret && v != "" {
			v = MaskSecret(v)
		}
		out[k] = v
	}
	return out
}

// MaskSecret hides all but the last four characters of v.
func MaskSecret(v string) string {
	const visible = 4
	if len(v) <= visible {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-visible) + v[len(v)-visible:]
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error

	if c.Instance.URL != "" {
		u, err := url.Parse(c.Instance.URL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			errs = append(errs, fmt.Errorf("instance.url %q must be an http(s) URL", c.Instance.URL))
		}
	}
	if c.Instance.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("instance.timeout_seconds must not be negative"))
	}
	if c.Paging.PageSize < 1 || c.Paging.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("paging.page_size must be between 1 and %d", MaxPageSize))
	}
	if c.Paging.RetryDelay <= 0 {
		errs = append(errs, errors.New("paging.retry_delay must be positive"))
	}
	if c.Paging.MaxPages < 0 {
		errs = append(errs, errors.New("paging.max_pages must not be negative"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, errors.New("cache.ttl_seconds must not be negative"))
	}
	if c.Cache.MaxSizeMB < 0 {
		errs = append(errs, errors.New("cache.max_size_mb must not be negative"))
	}
	switch c.Output.DefaultFormat {
	case "table", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output.default_format %q must be table, json or yaml", c.Output.DefaultFormat))
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		errs = append(errs, fmt.Errorf("logging.level %q is not a log level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json, console or text", c.Logging.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
