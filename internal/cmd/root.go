// Package cmd provides CLI commands for cw-sslcheck.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/certwatch-app/cw-sslcheck/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cw-sslcheck",
	Short: "cw-sslcheck - HTTPS leaf certificate checker",
	Long: `cw-sslcheck retrieves the leaf certificate presented by each configured
HTTPS URL and reports its issuer, validity and days until expiry.

URLs and thresholds can be given as flags, SSLCHECK_* environment variables
or in config.toml:
  cw-sslcheck check -u https://example.com,https://example.org
  cw-sslcheck check -c /path/to/config.toml
  cw-sslcheck watch -c /path/to/config.toml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.toml if present)")
	flags.StringSliceP("urls", "u", nil, "comma-separated URLs to check")
	flags.IntP("warning-days", "w", 30, "warn when fewer days than this remain")
	flags.IntP("error-days", "e", 14, "error when fewer days than this remain")
	flags.StringP("log-level", "l", "info", "log level (trace, debug, info, warn, error)")
	flags.String("slack-webhook-url", "", "Slack incoming webhook URL for reports")
	flags.Duration("timeout", config.DefaultTimeout, "timeout for a single check")
	flags.Int("concurrency", 0, "maximum checks in flight (0 = unbounded)")
	flags.String("name-match", "exact", "hostname matching mode (exact, contains)")

	// Bind flags to viper
	bindFlag("urls", "urls")
	bindFlag("warning_days", "warning-days")
	bindFlag("error_days", "error-days")
	bindFlag("log_level", "log-level")
	bindFlag("slack_webhook_url", "slack-webhook-url")
	bindFlag("timeout", "timeout")
	bindFlag("concurrency", "concurrency")
	bindFlag("name_match", "name-match")
}

func bindFlag(key, flag string) {
	//nolint:errcheck // error is ignored because the flag is guaranteed to exist
	viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// loadConfig reads the config file and environment into the global viper
// instance and returns the validated configuration.
// Precedence is flag > SSLCHECK_* env > file > default.
func loadConfig() (*config.Config, error) {
	v := viper.GetViper()
	config.BindEnv(v)

	if err := config.ReadFile(v, cfgFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
