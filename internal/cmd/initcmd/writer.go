package initcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/certwatch-app/cw-sslcheck/internal/config"
)

// fileConfig is the on-disk TOML layout. Durations are written as strings
// so the file stays readable and round-trips through viper.
type fileConfig struct {
	URLs            []string `toml:"urls"`
	WarningDays     int      `toml:"warning_days"`
	ErrorDays       int      `toml:"error_days"`
	LogLevel        string   `toml:"log_level"`
	SlackWebhookURL string   `toml:"slack_webhook_url,omitempty"`
	NameMatch       string   `toml:"name_match"`
	Timeout         string   `toml:"timeout"`
	Concurrency     int      `toml:"concurrency"`
	Interval        string   `toml:"interval"`
	MetricsPort     int      `toml:"metrics_port"`
}

const fileHeader = `# cw-sslcheck configuration
# Generated by 'cw-sslcheck init'. Every key can be overridden with an
# SSLCHECK_<KEY> environment variable or the matching command line flag.

`

// MarshalConfig renders cfg as TOML.
func MarshalConfig(cfg *config.Config) ([]byte, error) {
	fc := fileConfig{
		URLs:            cfg.URLs,
		WarningDays:     cfg.WarningDays,
		ErrorDays:       cfg.ErrorDays,
		LogLevel:        cfg.LogLevel,
		SlackWebhookURL: cfg.SlackWebhookURL,
		NameMatch:       cfg.NameMatch,
		Timeout:         cfg.Timeout.String(),
		Concurrency:     cfg.Concurrency,
		Interval:        cfg.Interval.String(),
		MetricsPort:     cfg.MetricsPort,
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	enc := toml.NewEncoder(&buf)
	enc.SetArraysMultiline(true)
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteConfig writes cfg to path, creating parent directories as needed.
// The file may contain a webhook secret so it is written with 0600.
func WriteConfig(cfg *config.Config, path string) error {
	data, err := MarshalConfig(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
