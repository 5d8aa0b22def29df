// Package config handles configuration loading and validation for cw-sslcheck.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/certwatch-app/cw-sslcheck/internal/certs"
)

// DefaultConfigFile is looked up in the working directory when no file is given
const DefaultConfigFile = "config.toml"

// EnvPrefix is prepended to environment variable overrides (SSLCHECK_URLS, ...)
const EnvPrefix = "SSLCHECK"

// Defaults for keys that are not thresholds
const (
	DefaultLogLevel    = "info"
	DefaultTimeout     = 30 * time.Second
	DefaultInterval    = time.Hour
	DefaultMetricsPort = 9402
)

var (
	// ErrMissingURLs is returned when neither flags, env nor file provide URLs
	ErrMissingURLs = errors.New("no URLs provided, specify them with --urls or in the 'urls' field of the configuration file")
	// ErrConfigNotFound is returned when an explicitly requested file does not exist
	ErrConfigNotFound = errors.New("configuration file not found")
)

// Config represents the complete checker configuration
// Fields are ordered for optimal memory alignment
type Config struct {
	URLs            []string      `mapstructure:"urls"`
	LogLevel        string        `mapstructure:"log_level"`
	SlackWebhookURL string        `mapstructure:"slack_webhook_url"`
	NameMatch       string        `mapstructure:"name_match"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Interval        time.Duration `mapstructure:"interval"`
	WarningDays     int           `mapstructure:"warning_days"`
	ErrorDays       int           `mapstructure:"error_days"`
	Concurrency     int           `mapstructure:"concurrency"`
	MetricsPort     int           `mapstructure:"metrics_port"`
}

// Thresholds returns the configured freshness bounds
func (c *Config) Thresholds() certs.Thresholds {
	return certs.Thresholds{
		WarningDays: c.WarningDays,
		ErrorDays:   c.ErrorDays,
	}
}

// MatchMode returns the parsed name_match setting
func (c *Config) MatchMode() certs.MatchMode {
	mode, err := certs.ParseMatchMode(c.NameMatch)
	if err != nil {
		return certs.MatchExact
	}
	return mode
}

// NotificationsEnabled reports whether a webhook is configured
func (c *Config) NotificationsEnabled() bool {
	return c.SlackWebhookURL != ""
}

// ReadFile points v at the configuration file. An explicit path must exist;
// without one, DefaultConfigFile is read only when present.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return fmt.Errorf("failed to access config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return nil
		}
		v.SetConfigFile(DefaultConfigFile)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

// BindEnv enables SSLCHECK_* environment overrides on v
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from viper
func Load(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	cfg := &Config{}
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.URLs = normalizeURLs(cfg.URLs)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("urls", []string{})
	v.SetDefault("warning_days", certs.DefaultWarningDays)
	v.SetDefault("error_days", certs.DefaultErrorDays)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("slack_webhook_url", "")
	v.SetDefault("name_match", string(certs.MatchExact))
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("concurrency", 0)
	v.SetDefault("interval", DefaultInterval.String())
	v.SetDefault("metrics_port", DefaultMetricsPort)
}

// normalizeURLs trims entries, splits comma-joined values coming from the
// environment and drops empties.
func normalizeURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, u := range strings.Split(entry, ",") {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return ErrMissingURLs
	}

	if err := c.validateThresholds(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	if err := c.validateNotify(); err != nil {
		return fmt.Errorf("slack_webhook_url: %w", err)
	}

	return c.validateRuntime()
}

func (c *Config) validateThresholds() error {
	if c.WarningDays < 0 {
		return fmt.Errorf("warning_days must not be negative")
	}
	if c.ErrorDays < 0 {
		return fmt.Errorf("error_days must not be negative")
	}
	return nil
}

func (c *Config) validateNotify() error {
	if c.SlackWebhookURL == "" {
		return nil
	}

	u, err := url.Parse(c.SlackWebhookURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}

func (c *Config) validateRuntime() error {
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: trace, debug, info, warn, error")
	}

	if _, err := certs.ParseMatchMode(c.NameMatch); err != nil {
		return fmt.Errorf("name_match: %w", err)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second")
	}

	if c.Concurrency < 0 || c.Concurrency > 500 {
		return fmt.Errorf("concurrency must be between 0 (unbounded) and 500")
	}

	if c.Interval < 10*time.Second {
		return fmt.Errorf("interval must be at least 10 seconds")
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port must be between 0 and 65535")
	}

	return nil
}
