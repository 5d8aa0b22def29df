package cmd

import (
	"github.com/spf13/cobra"

	"github.com/certwatch-app/cw-sslcheck/internal/cmd/initcmd"
	"github.com/certwatch-app/cw-sslcheck/internal/config"
)

var (
	initOutputPath     string
	initNonInteractive bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new cw-sslcheck configuration",
	Long: `Interactively create a new cw-sslcheck configuration file.

The wizard will guide you through setting up:
  • URLs to check
  • Expiry thresholds and hostname matching
  • Slack notifications
  • Watch mode interval and metrics port

Examples:
  # Interactive mode (default)
  cw-sslcheck init

  # Specify output path
  cw-sslcheck init -o /etc/cw-sslcheck/config.toml

  # Non-interactive mode (for CI/scripting)
  SSLCHECK_URLS=https://api.example.com cw-sslcheck init --non-interactive

Environment variables for non-interactive mode:
  SSLCHECK_URLS               (required) Comma-separated URLs to check
  SSLCHECK_WARNING_DAYS       (optional) Warning threshold (default: 30)
  SSLCHECK_ERROR_DAYS         (optional) Error threshold (default: 14)
  SSLCHECK_LOG_LEVEL          (optional) Log level (default: info)
  SSLCHECK_SLACK_WEBHOOK_URL  (optional) Slack incoming webhook URL
  SSLCHECK_NAME_MATCH         (optional) exact or contains (default: exact)
  SSLCHECK_TIMEOUT            (optional) Per-check timeout (default: 30s)
  SSLCHECK_CONCURRENCY        (optional) Checks in flight, 0 = unbounded (default: 0)
  SSLCHECK_INTERVAL           (optional) Watch interval (default: 1h)
  SSLCHECK_METRICS_PORT       (optional) Metrics port, 0 disables (default: 9402)`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", "./"+config.DefaultConfigFile,
		"Output path for the configuration file")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false,
		"Run in non-interactive mode using environment variables")
}

func runInit(_ *cobra.Command, _ []string) error {
	if initNonInteractive {
		return initcmd.RunNonInteractive(initOutputPath)
	}

	wizard := initcmd.NewWizard()
	wizard.SetOutputPath(initOutputPath)
	return wizard.Run()
}
