package certs

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MatchMode selects how non-wildcard names are compared against the hostname
type MatchMode string

const (
	// MatchExact requires case-insensitive equality
	MatchExact MatchMode = "exact"
	// MatchContains accepts any name containing the hostname as a substring
	MatchContains MatchMode = "contains"
)

// ParseMatchMode converts a config string into a MatchMode
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchExact:
		return MatchExact, nil
	case MatchContains:
		return MatchContains, nil
	default:
		return "", fmt.Errorf("unknown name match mode %q (want exact or contains)", s)
	}
}

const wildcardPrefix = "*."

// Matcher decides whether a hostname is covered by a certificate's subject
// common name or one of its subject alternative names.
type Matcher struct {
	logger *zap.Logger
	mode   MatchMode
}

// NewMatcher creates a Matcher. A nil logger discards diagnostics.
func NewMatcher(mode MatchMode, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == "" {
		mode = MatchExact
	}
	return &Matcher{
		logger: logger,
		mode:   mode,
	}
}

// Mode returns the comparison mode in use
func (m *Matcher) Mode() MatchMode {
	return m.mode
}

// Matches reports whether hostname matches subject or any SAN. The subject is
// the comma-joined common name list produced by Subject. A nil sans slice
// means the certificate carried no readable SAN extension.
func (m *Matcher) Matches(subject string, sans []string, hostname string) bool {
	m.logger.Debug("checking subject against hostname",
		zap.String("hostname", hostname),
		zap.String("subject", subject),
		zap.String("mode", string(m.mode)),
	)
	if m.matchSubject(subject, hostname) {
		return true
	}

	for _, san := range sans {
		if m.matchName(san, hostname) {
			return true
		}
		if strings.HasPrefix(san, wildcardPrefix) && m.matchWildcard(san, hostname) {
			return true
		}
	}

	if sans != nil {
		m.logger.Debug("checked sans against hostname",
			zap.String("hostname", hostname),
			zap.Strings("sans", sans),
		)
	}
	m.logger.Warn("no subject or san match found", zap.String("hostname", hostname))
	return false
}

func (m *Matcher) matchSubject(subject, hostname string) bool {
	if m.mode == MatchContains {
		return m.matchName(subject, hostname)
	}
	for _, cn := range strings.Split(subject, ",") {
		if m.matchName(cn, hostname) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchName(name, hostname string) bool {
	if name == "" || hostname == "" {
		return false
	}
	if m.mode == MatchContains {
		return strings.Contains(name, hostname)
	}
	return strings.EqualFold(name, hostname)
}

func (m *Matcher) matchWildcard(wildcard, hostname string) bool {
	m.logger.Debug("checking wildcard against hostname",
		zap.String("hostname", hostname),
		zap.String("wildcard", wildcard),
	)
	return MatchWildcard(wildcard, hostname)
}

// MatchWildcard reports whether a "*.suffix" pattern covers hostname. The
// wildcard stands for exactly one non-empty leading label.
func MatchWildcard(wildcard, hostname string) bool {
	if !strings.HasPrefix(wildcard, wildcardPrefix) {
		return false
	}
	suffix := wildcard[len(wildcardPrefix):]

	label, rest, found := strings.Cut(hostname, ".")
	if !found || label == "" {
		return false
	}
	return strings.EqualFold(rest, suffix)
}
