package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/certwatch-app/cw-sslcheck/internal/certs"
	"github.com/certwatch-app/cw-sslcheck/internal/version"
)

// DefaultTimeout bounds a single HEAD exchange when no timeout is configured
const DefaultTimeout = 30 * time.Second

// crypto/tls decodes the peer certificates during the handshake and reports
// a decode failure only as text, without wrapping the x509 error.
const certParseFailure = "tls: failed to parse certificate from server"

// Options configure a Checker
type Options struct {
	Logger *zap.Logger
	// Transport overrides the TLS transport, mainly for tests
	Transport http.RoundTripper
	Clock     func() time.Time
	MatchMode certs.MatchMode
	Timeout   time.Duration
	// Concurrency caps in-flight checks; 0 starts one goroutine per URL
	Concurrency int
}

// Checker retrieves and evaluates leaf certificates. It is safe for
// concurrent use; the HTTP client is shared read-only by all checks.
type Checker struct {
	client      *http.Client
	evaluator   *certs.Evaluator
	logger      *zap.Logger
	now         func() time.Time
	concurrency int
}

// New creates a Checker
func New(opts Options) *Checker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = NewTransport()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Checker{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			// The certificate under test must belong to the requested host
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		evaluator: certs.NewEvaluator(logger,
			certs.WithClock(now),
			certs.WithMatchMode(opts.MatchMode),
		),
		logger:      logger,
		now:         now,
		concurrency: opts.Concurrency,
	}
}

// NewTransport returns an HTTP transport that completes the TLS handshake
// regardless of certificate problems so the leaf can still be inspected.
func NewTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // broken certificates are what we report on
	}
	// Every check needs a fresh handshake, a pooled connection would hide renewals
	t.DisableKeepAlives = true
	return t
}

// Run checks every URL concurrently and returns one Outcome per input, in
// input order. A panicking check is reported as a KindInternal error instead
// of taking the batch down.
func (c *Checker) Run(ctx context.Context, urls []string, thresholds certs.Thresholds) []Outcome {
	outcomes := make([]Outcome, len(urls))

	p := pool.New()
	if c.concurrency > 0 {
		p = p.WithMaxGoroutines(c.concurrency)
	}

	for i, rawURL := range urls {
		i, rawURL := i, rawURL
		p.Go(func() {
			outcomes[i] = c.safeCheck(ctx, rawURL, thresholds)
		})
	}
	p.Wait()

	return outcomes
}

func (c *Checker) safeCheck(ctx context.Context, rawURL string, thresholds certs.Thresholds) Outcome {
	start := c.now()

	var outcome Outcome
	var catcher panics.Catcher
	catcher.Try(func() {
		outcome = c.Check(ctx, rawURL, thresholds)
	})

	if r := catcher.Recovered(); r != nil {
		c.logger.Error("failed to process url",
			zap.String("url", rawURL),
			zap.Any("panic", r.Value),
			zap.ByteString("stack", r.Stack),
		)
		return Outcome{
			CheckedAt: start.UTC(),
			URL:       rawURL,
			Duration:  c.now().Sub(start),
			Err: &CheckError{
				Kind: KindInternal,
				URL:  rawURL,
				Err:  fmt.Errorf("panic: %v", r.Value),
			},
		}
	}
	return outcome
}

// Check performs a single HEAD request against rawURL and evaluates the leaf
// certificate presented during the handshake.
func (c *Checker) Check(ctx context.Context, rawURL string, thresholds certs.Thresholds) Outcome {
	start := c.now()
	outcome := Outcome{
		CheckedAt: start.UTC(),
		URL:       rawURL,
	}
	fail := func(kind Kind, err error) Outcome {
		outcome.Err = &CheckError{Kind: kind, URL: rawURL, Err: err}
		outcome.Duration = c.now().Sub(start)
		return outcome
	}

	u, err := parseURL(rawURL)
	if err != nil {
		c.logger.Debug("invalid url", zap.String("url", rawURL), zap.Error(err))
		return fail(KindURLParse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return fail(KindURLParse, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	c.logger.Debug("retrieving certificate", zap.String("url", rawURL))

	resp, err := c.client.Do(req)
	if err != nil {
		if isCertParseError(err) {
			c.logger.Warn("no cert detail found", zap.String("url", rawURL), zap.Error(err))
			return fail(KindNoCertificate, err)
		}
		c.logger.Error("failed to retrieve certificate",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return fail(KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.TLS == nil || len(resp.TLS.PeerCertificates) == 0 {
		c.logger.Warn("no tls info found", zap.String("url", rawURL))
		return fail(KindNoCertificate, errors.New("response carried no peer certificate"))
	}

	cert, err := x509.ParseCertificate(resp.TLS.PeerCertificates[0].Raw)
	if err != nil {
		c.logger.Warn("no cert detail found", zap.String("url", rawURL), zap.Error(err))
		return fail(KindNoCertificate, err)
	}

	verdict := c.evaluator.Evaluate(cert, u, thresholds)
	outcome.Verdict = &verdict
	outcome.Duration = c.now().Sub(start)

	c.logger.Debug("check complete",
		zap.String("url", rawURL),
		zap.Bool("valid", verdict.Valid),
		zap.Int("days_remaining", verdict.DaysRemaining),
		zap.Stringer("freshness", verdict.Freshness),
	)

	return outcome
}

func isCertParseError(err error) bool {
	return strings.Contains(err.Error(), certParseFailure)
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errors.New("relative URL without a scheme")
	}
	return u, nil
}
