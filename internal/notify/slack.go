// Package notify posts check reports to a Slack incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/certwatch-app/cw-sslcheck/internal/checker"
	"github.com/certwatch-app/cw-sslcheck/internal/report"
	"github.com/certwatch-app/cw-sslcheck/internal/version"
)

const (
	// DefaultTimeout bounds a single webhook POST
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 3
	// DefaultMaxElapsedTime stops retrying once this much time has passed
	DefaultMaxElapsedTime = 2 * time.Minute
	// NoRetries makes Send give up after the first failed attempt
	NoRetries = -1

	headerTimeLayout = "2006-01-02 15:04:05"
)

// StatusError is returned when the webhook answers with a non-2xx status
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slack webhook returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying could succeed
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configure a Slack notifier
type Options struct {
	Logger     *zap.Logger
	HTTPClient *http.Client
	Clock      func() time.Time
	// InitialInterval is the first retry delay, doubled on each attempt
	InitialInterval time.Duration
	// MaxElapsedTime bounds the whole retry sequence, 0 uses DefaultMaxElapsedTime
	MaxElapsedTime time.Duration
	// MaxRetries counts retries after the first attempt. 0 uses
	// DefaultMaxRetries and NoRetries disables retrying.
	MaxRetries int
}

// Slack sends report messages to an incoming webhook
type Slack struct {
	httpClient      *http.Client
	logger          *zap.Logger
	now             func() time.Time
	webhookURL      string
	initialInterval time.Duration
	maxElapsedTime  time.Duration
	maxRetries      uint64
}

// NewSlack creates a notifier for webhookURL
func NewSlack(webhookURL string, opts Options) *Slack {
	s := &Slack{
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger,
		now:             opts.Clock,
		webhookURL:      webhookURL,
		initialInterval: opts.InitialInterval,
		maxElapsedTime:  opts.MaxElapsedTime,
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.initialInterval <= 0 {
		s.initialInterval = 500 * time.Millisecond
	}
	if s.maxElapsedTime <= 0 {
		s.maxElapsedTime = DefaultMaxElapsedTime
	}
	switch {
	case opts.MaxRetries == 0:
		s.maxRetries = DefaultMaxRetries
	case opts.MaxRetries > 0:
		s.maxRetries = uint64(opts.MaxRetries)
	}
	return s
}

// Message builds the notification text: a dated header followed by one plain
// report line per outcome.
func Message(outcomes []checker.Outcome, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SSL Checker Utility Report -  Date: %s (UTC)\n\n", now.UTC().Format(headerTimeLayout))
	b.WriteString(report.Text(outcomes))
	return b.String()
}

// Notify sends the report for outcomes. Errors are logged and returned; a
// failed notification never affects the check results.
func (s *Slack) Notify(ctx context.Context, outcomes []checker.Outcome) error {
	if err := s.Send(ctx, Message(outcomes, s.now())); err != nil {
		s.logger.Error("failed to send slack notification", zap.Error(err))
		return err
	}
	s.logger.Info("slack notification sent successfully", zap.Int("results", len(outcomes)))
	return nil
}

// Send posts text to the webhook, retrying network failures, 429 and 5xx
// responses with exponential backoff.
func (s *Slack) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := s.post(ctx, payload)
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return backoff.Permanent(err)
		}
		s.logger.Debug("slack webhook attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxElapsedTime = s.maxElapsedTime

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))
}

func (s *Slack) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	s.logger.Debug("received slack response",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
