package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/certwatch-app/cw-sslcheck/internal/agent"
	"github.com/certwatch-app/cw-sslcheck/internal/certs"
	"github.com/certwatch-app/cw-sslcheck/internal/checker"
	"github.com/certwatch-app/cw-sslcheck/internal/logging"
	"github.com/certwatch-app/cw-sslcheck/internal/report"
)

// ErrCheckFailed is returned when --fail-on matched at least one outcome
var ErrCheckFailed = errors.New("one or more certificate checks failed")

var (
	checkOutput  string
	checkFailOn  string
	checkNoColor bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every configured URL once and print a report",
	Long: `Retrieve the leaf certificate of every configured URL, print one report
line per URL and post the report to Slack when a webhook is configured.

Example:
  cw-sslcheck check -u https://example.com
  cw-sslcheck check -c config.toml --output json
  cw-sslcheck check -c config.toml --fail-on warning`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "text", "output format (text, json, yaml)")
	checkCmd.Flags().StringVar(&checkFailOn, "fail-on", string(failOnNever),
		"exit non-zero when an outcome is at least this bad (never, invalid, error, warning)")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "disable coloured text output")
}

// failOn is the --fail-on policy
type failOn string

const (
	failOnNever   failOn = "never"
	failOnInvalid failOn = "invalid"
	failOnError   failOn = "error"
	failOnWarning failOn = "warning"
)

func parseFailOn(s string) (failOn, error) {
	switch f := failOn(strings.ToLower(strings.TrimSpace(s))); f {
	case "", failOnNever:
		return failOnNever, nil
	case failOnInvalid, failOnError, failOnWarning:
		return f, nil
	default:
		return "", fmt.Errorf("unknown --fail-on value %q (want never, invalid, error or warning)", s)
	}
}

// matches reports whether o trips the policy. Failed checks and invalid
// certificates trip every policy except never; error additionally trips on
// expiring certificates below the error threshold and warning on those below
// the warning threshold.
func (f failOn) matches(o checker.Outcome) bool {
	if f == failOnNever {
		return false
	}
	if o.Verdict == nil || !o.Verdict.Valid {
		return true
	}
	switch f {
	case failOnError:
		return o.Verdict.Freshness == certs.FreshnessError
	case failOnWarning:
		return o.Verdict.Freshness != certs.FreshnessOK
	default:
		return false
	}
}

func (f failOn) any(outcomes []checker.Outcome) bool {
	for _, o := range outcomes {
		if f.matches(o) {
			return true
		}
	}
	return false
}

func runCheck(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(checkOutput)
	if err != nil {
		return err
	}

	policy, err := parseFailOn(checkFailOn)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr so the report on stdout stays machine readable
	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // nothing to do if flushing stderr fails

	logger.Debug("effective configuration loaded",
		zap.Strings("urls", cfg.URLs),
		zap.Int("warning_days", cfg.WarningDays),
		zap.Int("error_days", cfg.ErrorDays),
		zap.String("name_match", cfg.NameMatch),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("concurrency", cfg.Concurrency),
	)
	if cfg.NotificationsEnabled() {
		logger.Info("slack notifications enabled")
	} else {
		logger.Info("slack notifications disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes := agent.New(cfg, logger).RunOnce(ctx)

	w := report.NewWriter(cmd.OutOrStdout(), format, report.WithColor(!checkNoColor))
	if err := w.Write(outcomes); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if policy.any(outcomes) {
		return ErrCheckFailed
	}
	return nil
}
