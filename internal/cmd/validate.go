package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the effective cw-sslcheck configuration (file, environment and
flags combined) without checking any URL.

Example:
  cw-sslcheck validate -c /path/to/config.toml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	notifications := "disabled"
	if cfg.NotificationsEnabled() {
		notifications = "slack"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid!")
	fmt.Fprintf(out, "  URLs: %d (%s)\n", len(cfg.URLs), strings.Join(cfg.URLs, ", "))
	fmt.Fprintf(out, "  Thresholds: warning < %d days, error < %d days\n", cfg.WarningDays, cfg.ErrorDays)
	fmt.Fprintf(out, "  Name matching: %s\n", cfg.MatchMode())
	fmt.Fprintf(out, "  Timeout: %s\n", cfg.Timeout)
	fmt.Fprintf(out, "  Notifications: %s\n", notifications)
	fmt.Fprintf(out, "  Watch interval: %s\n", cfg.Interval)

	return nil
}
