package certs

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	day           = 24 * time.Hour
	secondsPerDay = int64(day / time.Second)
)

// Evaluator combines extraction, self-signed detection and name matching
// into a single Verdict.
type Evaluator struct {
	logger    *zap.Logger
	extractor *Extractor
	matcher   *Matcher
	now       func() time.Time
}

// EvaluatorOption customizes an Evaluator
type EvaluatorOption func(*Evaluator)

// WithClock overrides the evaluation time source
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.now = now
	}
}

// WithMatchMode sets how hostnames are compared with certificate names
func WithMatchMode(mode MatchMode) EvaluatorOption {
	return func(e *Evaluator) {
		e.matcher = NewMatcher(mode, e.logger)
	}
}

// NewEvaluator creates an Evaluator. A nil logger discards diagnostics.
func NewEvaluator(logger *zap.Logger, opts ...EvaluatorOption) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{
		logger:    logger,
		extractor: NewExtractor(logger),
		matcher:   NewMatcher(MatchExact, logger),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate produces a Verdict for cert as served for requestURL. Validity is
// only ever downgraded: an expired window, a self-signed certificate or a
// hostname mismatch each force it to false.
func (e *Evaluator) Evaluate(cert *x509.Certificate, requestURL *url.URL, thresholds Thresholds) Verdict {
	now := e.now()

	valid := !now.Before(cert.NotBefore) && !now.After(cert.NotAfter)

	selfSigned := IsSelfSigned(cert)
	if selfSigned {
		valid = false
	}

	days := DaysRemaining(cert.NotAfter, now)

	issuer := e.extractor.Issuer(cert)
	subject := e.extractor.Subject(cert)
	sans := e.extractor.SANs(cert)

	nameMatched := false
	hostname, rawURL := "", ""
	if requestURL != nil {
		hostname = requestURL.Hostname()
		rawURL = requestURL.String()
	}
	if hostname == "" {
		e.logger.Error("unable to determine hostname from url", zap.String("url", rawURL))
		valid = false
	} else {
		nameMatched = e.matcher.Matches(subject, sans, hostname)
		if !nameMatched {
			valid = false
		}
	}

	fingerprint := sha256.Sum256(cert.Raw)
	serial := ""
	if cert.SerialNumber != nil {
		serial = cert.SerialNumber.String()
	}

	return Verdict{
		NotBefore:         cert.NotBefore.UTC(),
		NotAfter:          cert.NotAfter.UTC(),
		Issuer:            issuer,
		Subject:           subject,
		SerialNumber:      serial,
		FingerprintSHA256: hex.EncodeToString(fingerprint[:]),
		SANs:              sans,
		DaysRemaining:     days,
		Freshness:         thresholds.Classify(days),
		Valid:             valid,
		SelfSigned:        selfSigned,
		NameMatched:       nameMatched,
	}
}

// DaysRemaining returns the whole days between now and notAfter, rounded
// down, or 0 once notAfter has passed. It counts in seconds so the
// 99991231235959Z "no well-defined expiration" date does not overflow
// time.Duration.
func DaysRemaining(notAfter, now time.Time) int {
	secs := notAfter.Unix() - now.Unix()
	if notAfter.Nanosecond() < now.Nanosecond() {
		secs--
	}
	if secs <= 0 {
		return 0
	}
	return int(secs / secondsPerDay)
}
