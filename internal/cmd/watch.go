package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/certwatch-app/cw-sslcheck/internal/agent"
	"github.com/certwatch-app/cw-sslcheck/internal/config"
	"github.com/certwatch-app/cw-sslcheck/internal/logging"
	"github.com/certwatch-app/cw-sslcheck/internal/state"
)

var (
	watchStateDir   string
	watchResetState bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check the configured URLs on an interval",
	Long: `Run cw-sslcheck as a long-lived agent: every URL is checked immediately and
then once per interval. Results are exposed as Prometheus metrics on
:<metrics-port>/metrics and posted to Slack when a webhook is configured.

Example:
  cw-sslcheck watch -c /path/to/config.toml
  cw-sslcheck watch -u https://example.com --interval 15m --metrics-port 0`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", config.DefaultInterval, "time between check runs")
	watchCmd.Flags().Int("metrics-port", config.DefaultMetricsPort, "port for /metrics and /healthz (0 disables)")
	watchCmd.Flags().StringVar(&watchStateDir, "state-dir", "",
		"directory for the status state file (default: next to the config file)")
	watchCmd.Flags().BoolVar(&watchResetState, "reset-state", false,
		"discard stored statuses before the first run")

	//nolint:errcheck // error is ignored because the flag is guaranteed to exist
	viper.BindPFlag("interval", watchCmd.Flags().Lookup("interval"))
	//nolint:errcheck // error is ignored because the flag is guaranteed to exist
	viper.BindPFlag("metrics_port", watchCmd.Flags().Lookup("metrics-port"))
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // nothing to do if flushing stdout fails

	stateManager, err := openState(logger)
	if err != nil {
		return err
	}

	a := agent.New(cfg, logger, agent.WithState(stateManager))

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("agent error: %w", err)
	}

	logger.Info("agent stopped gracefully")
	return nil
}

// openState loads the state file, or removes it first with --reset-state.
// An unreadable file only costs the previous statuses.
func openState(logger *zap.Logger) (*state.Manager, error) {
	m := newStateManager()

	if watchResetState {
		if err := m.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset state: %w", err)
		}
		logger.Info("state reset", zap.String("state_file", m.Path()))
		return m, nil
	}

	if err := m.Load(); err != nil {
		logger.Warn("failed to load state, starting fresh", zap.Error(err))
	}
	return m, nil
}

func newStateManager() *state.Manager {
	switch {
	case watchStateDir != "":
		return state.NewManagerWithStateDir(watchStateDir)
	case cfgFile != "":
		return state.NewManager(cfgFile)
	default:
		return state.NewManagerWithStateDir(".")
	}
}
