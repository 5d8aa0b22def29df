// Package checker fans out certificate checks over a batch of URLs.
package checker

import (
	"fmt"
	"time"

	"github.com/certwatch-app/cw-sslcheck/internal/certs"
)

// Kind identifies why a single URL check failed
type Kind int

const (
	// KindURLParse means the input was not an absolute URL; no request was made
	KindURLParse Kind = iota + 1
	// KindNetwork covers DNS, connect, handshake and timeout failures
	KindNetwork
	// KindNoCertificate means the response carried no usable leaf certificate
	KindNoCertificate
	// KindInternal means the check itself failed unexpectedly
	KindInternal
)

// String returns the metric/label friendly name of the kind
func (k Kind) String() string {
	switch k {
	case KindURLParse:
		return "url_parse"
	case KindNetwork:
		return "network"
	case KindNoCertificate:
		return "no_certificate"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CheckError is the typed failure of a single URL check
type CheckError struct {
	Err  error
	URL  string
	Kind Kind
}

func (e *CheckError) Error() string {
	switch e.Kind {
	case KindURLParse:
		return fmt.Sprintf("failed to parse URL '%s': %v", e.URL, e.Err)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	case KindNoCertificate:
		return fmt.Sprintf("no SSL certificates found for URL: %s", e.URL)
	case KindInternal:
		return fmt.Sprintf("internal error checking %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("check failed for %s: %v", e.URL, e.Err)
	}
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Outcome is the result for one requested URL: exactly one of Verdict or Err
// is set.
// Fields are ordered for optimal memory alignment
type Outcome struct {
	CheckedAt time.Time
	Verdict   *certs.Verdict
	Err       *CheckError
	URL       string
	Duration  time.Duration
}

// OK reports whether the certificate was retrieved and evaluated
func (o Outcome) OK() bool {
	return o.Verdict != nil
}
