package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/retry"
)

// DefaultUserAgent is the User-Agent sent by clients of kind "browser".
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

type Config struct {
	Profile               string `mapstructure:"profile"`
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1m", etc.
	UserAgent             string `mapstructure:"user_agent"`
	MaxRedirects          int    `mapstructure:"max_redirects"`
	LogLevel              string `mapstructure:"log_level"`

	// Job is the resolved definition: the selected profile overlaid with file, env and flag overrides.
	Job job.Definition `mapstructure:"job"`

	// Profiles declares extra presets in the config file, keyed by name.
	Profiles map[string]job.Definition `mapstructure:"profiles"`

	Retry struct {
		MaxAttempts int    `mapstructure:"max_attempts"`
		BaseDelay   string `mapstructure:"base_delay"` // Go duration string
		Jitter      string `mapstructure:"jitter"`     // Go duration string
	} `mapstructure:"retry"`
	Cache struct {
		Type  string `mapstructure:"type"` // "" or "redis"; empty disables conditional requests, "memory" is refused
		Size  int    `mapstructure:"size"` // Maximum number of validators kept
		TTL   string `mapstructure:"ttl"`  // Go duration string like "24h"
		Redis struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
		PushURL string `mapstructure:"push_url"` // Prometheus Pushgateway, pushed once per run
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var logger zerolog.Logger

func init() {
	// Progress lines own stdout, diagnostics go to stderr
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"profile":       "profile",
	"base-url":      "job.base_url",
	"file-name":     "job.file_name",
	"output-dir":    "job.output_dir",
	"start":         "job.start",
	"end":           "job.end",
	"label":         "job.label",
	"skip-existing": "job.skip_existing",
	"client":        "job.client",
	"log-level":     "log_level",
}

// NewFlagSet declares the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "path to a YAML config file (default: ./config.yaml or ./config/config.yaml)")
	flags.String("profile", job.DefaultPreset, fmt.Sprintf("document set to fetch, one of %v or a profile from the config file", job.PresetNames()))
	flags.String("base-url", "", "source URL template, e.g. 'https://host/file?name=Chapter%20{{.ID}}'")
	flags.String("file-name", "", "destination file name template, e.g. 'Chapter_{{.ID}}.pdf'")
	flags.String("output-dir", "", "directory receiving the documents, created if missing")
	flags.Int("start", 0, "first identifier (inclusive)")
	flags.Int("end", 0, "last identifier (inclusive)")
	flags.String("label", "", "label used in progress lines")
	flags.Bool("skip-existing", false, "do not re-fetch identifiers whose file already exists and is not empty")
	flags.String("client", "", "client kind for the endpoint: standard or browser")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	return flags
}

// Load builds the configuration. Precedence, highest first: flags, APP_ environment
// variables, the config file, the selected profile, built-in defaults.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	if flags != nil {
		if path, err := flags.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
		}
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	profile := v.GetString("profile")
	preset, err := resolveProfile(v, profile)
	if err != nil {
		return nil, err
	}
	v.SetDefault("job.label", preset.Label)
	v.SetDefault("job.base_url", preset.URLTemplate)
	v.SetDefault("job.file_name", preset.FileTemplate)
	v.SetDefault("job.output_dir", preset.OutputDir)
	v.SetDefault("job.start", preset.Start)
	v.SetDefault("job.end", preset.End)
	v.SetDefault("job.skip_existing", preset.SkipExisting)
	v.SetDefault("job.client", preset.Client)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	config.Profile = profile
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", job.DefaultPreset)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("max_redirects", 10)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("retry.jitter", "500ms")
	v.SetDefault("cache.type", "")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.ttl", "720h")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", "localhost")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.push_url", "")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")
}

// resolveProfile looks the profile up in the config file first, then in the built-in presets.
func resolveProfile(v *viper.Viper, name string) (job.Definition, error) {
	var def job.Definition
	if v.IsSet("profiles." + name) {
		if err := v.UnmarshalKey("profiles."+name, &def); err != nil {
			return def, fmt.Errorf("decode profile %q: %w", name, err)
		}
		return def, nil
	}
	def, ok := job.Preset(name)
	if !ok {
		return def, fmt.Errorf("unknown profile %q (built-in: %v)", name, job.PresetNames())
	}
	return def, nil
}

// CompileJob turns the resolved job definition into an immutable job.
func (c *Config) CompileJob() (*job.Job, error) {
	return job.Compile(c.Profile, c.Job)
}

// RetryPolicy parses the retry section.
func (c *Config) RetryPolicy() (retry.Policy, error) {
	policy := retry.DefaultPolicy()
	if c.Retry.MaxAttempts != 0 {
		policy.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.BaseDelay != "" {
		d, err := time.ParseDuration(c.Retry.BaseDelay)
		if err != nil {
			return policy, fmt.Errorf("parse retry.base_delay: %w", err)
		}
		policy.BaseDelay = d
	}
	if c.Retry.Jitter != "" {
		d, err := time.ParseDuration(c.Retry.Jitter)
		if err != nil {
			return policy, fmt.Errorf("parse retry.jitter: %w", err)
		}
		policy.Jitter = d
	}
	// Retrying without a pause leaves nothing to randomize.
	if policy.BaseDelay == 0 {
		policy.Jitter = 0
	}
	return policy, policy.Validate()
}

// Timeout parses client_timeout, falling back to 30s with a warning.
func (c *Config) Timeout() time.Duration {
	return ParseDurationOr(c.ClientTimeout, 30*time.Second, "client_timeout")
}

// CacheTTL parses cache.ttl, falling back to 30 days with a warning.
func (c *Config) CacheTTL() time.Duration {
	return ParseDurationOr(c.Cache.TTL, 720*time.Hour, "cache.ttl")
}

// ParseDurationOr parses value, logging a warning and returning fallback when it is empty or invalid.
func ParseDurationOr(value string, fallback time.Duration, key string) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

// ConfigureLogging sets the global log level from level, defaulting to info.
func ConfigureLogging(level string) {
	parsed := zerolog.InfoLevel // default
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			parsed = l
		} else {
			logger.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		}
	}

	// Set the global log level
	zerolog.SetGlobalLevel(parsed)

	// Update logger with the configured level
	logger = logger.Level(parsed)
	logger.Debug().Str("level", parsed.String()).Msg("Logging configured")
}

// AttachRunID adds run_id to every entry logged from now on.
func AttachRunID(runID string) {
	logger = logger.With().Str("run_id", runID).Logger()
}

func GetLogger() zerolog.Logger {
	return logger
}
