// Package certs evaluates leaf TLS certificates: field extraction, hostname
// matching, self-signed detection and expiry classification.
package certs

import (
	"time"
)

// Freshness classifies how close a certificate is to expiry
type Freshness int

const (
	// FreshnessOK means days remaining is at or above the warning threshold
	FreshnessOK Freshness = iota
	// FreshnessWarning means days remaining is below the warning threshold
	FreshnessWarning
	// FreshnessError means days remaining is below the error threshold
	FreshnessError
)

// String returns the lowercase name of the freshness state
func (f Freshness) String() string {
	switch f {
	case FreshnessOK:
		return "ok"
	case FreshnessWarning:
		return "warning"
	case FreshnessError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so reports render the name
func (f Freshness) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Default expiry thresholds in days
const (
	DefaultWarningDays = 30
	DefaultErrorDays   = 14
)

// Thresholds are the day bounds used to classify freshness
type Thresholds struct {
	WarningDays int
	ErrorDays   int
}

// DefaultThresholds returns the 30/14 day defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarningDays: DefaultWarningDays,
		ErrorDays:   DefaultErrorDays,
	}
}

// Classify maps days remaining onto a freshness state. Comparisons are strict.
func (t Thresholds) Classify(daysRemaining int) Freshness {
	switch {
	case daysRemaining < t.ErrorDays:
		return FreshnessError
	case daysRemaining < t.WarningDays:
		return FreshnessWarning
	default:
		return FreshnessOK
	}
}

// Verdict is the evaluation result for a single leaf certificate.
// SANs is nil when the extension is absent or unreadable and non-nil (possibly
// empty) when it was present.
// Fields are ordered for optimal memory alignment
type Verdict struct {
	NotBefore         time.Time `json:"not_before" yaml:"not_before"`
	NotAfter          time.Time `json:"not_after" yaml:"not_after"`
	Issuer            string    `json:"issuer" yaml:"issuer"`
	Subject           string    `json:"subject" yaml:"subject"`
	SerialNumber      string    `json:"serial_number" yaml:"serial_number"`
	FingerprintSHA256 string    `json:"fingerprint_sha256" yaml:"fingerprint_sha256"`
	SANs              []string  `json:"sans" yaml:"sans"`
	DaysRemaining     int       `json:"days_remaining" yaml:"days_remaining"`
	Freshness         Freshness `json:"freshness" yaml:"freshness"`
	Valid             bool      `json:"is_valid" yaml:"is_valid"`
	SelfSigned        bool      `json:"self_signed" yaml:"self_signed"`
	NameMatched       bool      `json:"name_matched" yaml:"name_matched"`
}
