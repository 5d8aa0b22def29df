// Package agent runs certificate checks once or on an interval, publishing
// results to metrics, the state file and the webhook.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-app/cw-sslcheck/internal/checker"
	"github.com/certwatch-app/cw-sslcheck/internal/config"
	"github.com/certwatch-app/cw-sslcheck/internal/metrics"
	"github.com/certwatch-app/cw-sslcheck/internal/notify"
	"github.com/certwatch-app/cw-sslcheck/internal/report"
	"github.com/certwatch-app/cw-sslcheck/internal/state"
	"github.com/certwatch-app/cw-sslcheck/internal/version"
)

// Notifier delivers a run's outcomes somewhere outside the process
type Notifier interface {
	Notify(ctx context.Context, outcomes []checker.Outcome) error
}

// Agent orchestrates checking, metrics, state and notification
type Agent struct {
	config   *config.Config
	checker  *checker.Checker
	notifier Notifier
	state    *state.Manager
	logger   *zap.Logger
	now      func() time.Time
	lastRun  []checker.Outcome
	mu       sync.RWMutex
}

// Option configures an Agent
type Option func(*Agent)

// WithNotifier overrides the notifier built from the configured webhook
func WithNotifier(n Notifier) Option {
	return func(a *Agent) { a.notifier = n }
}

// WithState enables status transition tracking
func WithState(m *state.Manager) Option {
	return func(a *Agent) { a.state = m }
}

// WithChecker overrides the checker built from config
func WithChecker(c *checker.Checker) Option {
	return func(a *Agent) { a.checker = c }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates a new Agent
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Agent{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.checker == nil {
		a.checker = checker.New(checker.Options{
			Logger:      logger,
			Clock:       a.now,
			MatchMode:   cfg.MatchMode(),
			Timeout:     cfg.Timeout,
			Concurrency: cfg.Concurrency,
		})
	}
	if a.notifier == nil && cfg.NotificationsEnabled() {
		a.notifier = notify.NewSlack(cfg.SlackWebhookURL, notify.Options{
			Logger: logger,
			Clock:  a.now,
		})
	}

	return a
}

// RunOnce checks every configured URL and publishes the outcomes
func (a *Agent) RunOnce(ctx context.Context) []checker.Outcome {
	start := a.now()
	a.logger.Info("starting ssl certificate checks",
		zap.Int("urls", len(a.config.URLs)),
	)

	outcomes := a.checker.Run(ctx, a.config.URLs, a.config.Thresholds())
	duration := a.now().Sub(start)

	a.mu.Lock()
	a.lastRun = outcomes
	a.mu.Unlock()

	metrics.Record(outcomes, duration)

	summary := report.Summarize(outcomes)
	a.logger.Info("check run complete",
		zap.Duration("duration", duration),
		zap.Int("valid", summary.Valid),
		zap.Int("invalid", summary.Invalid),
		zap.Int("warning", summary.Warning),
		zap.Int("error", summary.Error),
		zap.Int("failed", summary.Failed),
	)

	for _, o := range outcomes {
		if o.Err == nil {
			continue
		}
		fields := []zap.Field{
			zap.String("url", o.URL),
			zap.Stringer("kind", o.Err.Kind),
			zap.Error(o.Err),
		}
		if a.state != nil {
			if prev := a.state.GetStatus(o.URL); prev != "" {
				fields = append(fields, zap.String("previous_status", prev))
			}
		}
		a.logger.Warn("certificate check failed", fields...)
	}

	a.trackState(outcomes, start)

	if a.notifier != nil {
		// errors are logged by the notifier and never fail the run
		_ = a.notifier.Notify(ctx, outcomes)
	}

	return outcomes
}

func (a *Agent) trackState(outcomes []checker.Outcome, at time.Time) {
	if a.state == nil {
		return
	}

	for _, t := range a.state.Update(outcomes, at) {
		if t.From == "" {
			continue
		}
		a.logger.Info("certificate status changed",
			zap.String("url", t.URL),
			zap.String("from", t.From),
			zap.String("to", t.To),
		)
	}

	if err := a.state.Save(); err != nil {
		a.logger.Warn("failed to save state", zap.Error(err))
	}
}

func (a *Agent) logStateOrigin() {
	if a.state == nil {
		return
	}
	if !a.state.HasState() {
		a.logger.Info("no previous state found, starting fresh",
			zap.String("state_file", a.state.Path()),
		)
		return
	}
	a.logger.Info("resuming from previous state",
		zap.String("state_file", a.state.Path()),
		zap.Time("last_run_at", a.state.GetLastRunAt()),
	)
}

// LastRun returns the outcomes of the most recent run, nil before the first
func (a *Agent) LastRun() []checker.Outcome {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastRun
}

// Run starts the watch loop: an immediate run, then one per interval until
// ctx is canceled.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("agent starting",
		zap.String("version", version.GetVersion()),
		zap.Int("urls", len(a.config.URLs)),
		zap.Duration("interval", a.config.Interval),
		zap.Int("metrics_port", a.config.MetricsPort),
		zap.Bool("notifications", a.notifier != nil),
	)

	metrics.SetAgentInfo(version.GetVersion(), string(a.config.MatchMode()), len(a.config.URLs))
	a.logStateOrigin()

	serverErr := make(chan error, 1)
	if a.config.MetricsPort > 0 {
		srv := &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(a.config.MetricsPort)),
			Handler:           a.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	a.RunOnce(ctx)

	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("agent stopping")
			return ctx.Err()

		case err := <-serverErr:
			return err

		case <-ticker.C:
			a.logger.Debug("check interval triggered")
			a.RunOnce(ctx)
		}
	}
}

// Handler serves /metrics, /healthz and /readyz. Readiness is reported once
// the first run has completed.
func (a *Agent) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if a.LastRun() == nil {
			http.Error(w, "no completed run", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
