// Package initcmd provides the interactive init command wizard.
package initcmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/certwatch-app/cw-sslcheck/internal/config"
)

// WizardState holds all collected input during the wizard.
type WizardState struct {
	// Output configuration
	ConfigPath    string
	OverwriteFile bool

	// Check configuration
	WarningDays string
	ErrorDays   string
	NameMatch   string
	Timeout     string
	Concurrency string
	LogLevel    string

	// Notification configuration
	SlackWebhookURL string

	// Watch mode configuration
	Interval    string
	MetricsPort string

	// URL configuration
	URLs       []string
	CurrentURL string
	AddAnother bool
}

// NewWizardState creates a new WizardState with sensible defaults.
func NewWizardState() *WizardState {
	return &WizardState{
		ConfigPath:  "./" + config.DefaultConfigFile,
		WarningDays: "30",
		ErrorDays:   "14",
		NameMatch:   "exact",
		Timeout:     "30s",
		Concurrency: "0",
		LogLevel:    "info",
		Interval:    "1h",
		MetricsPort: "9402",
		URLs:        make([]string, 0),
	}
}

// ToConfig converts the wizard state to a config.Config struct.
func (s *WizardState) ToConfig() (*config.Config, error) {
	warningDays, err := strconv.Atoi(strings.TrimSpace(s.WarningDays))
	if err != nil {
		return nil, fmt.Errorf("invalid warning days: %w", err)
	}

	errorDays, err := strconv.Atoi(strings.TrimSpace(s.ErrorDays))
	if err != nil {
		return nil, fmt.Errorf("invalid error days: %w", err)
	}

	// Parse timeout
	timeout, err := time.ParseDuration(s.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	// Parse check interval
	interval, err := time.ParseDuration(s.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}

	concurrency := 0
	if s.Concurrency != "" {
		if concurrency, err = strconv.Atoi(s.Concurrency); err != nil {
			return nil, fmt.Errorf("invalid concurrency: %w", err)
		}
	}

	metricsPort := 9402
	if s.MetricsPort != "" {
		if metricsPort, err = strconv.Atoi(s.MetricsPort); err != nil {
			return nil, fmt.Errorf("invalid metrics port: %w", err)
		}
	}

	cfg := &config.Config{
		URLs:            parseURLs(s.URLs),
		LogLevel:        s.LogLevel,
		SlackWebhookURL: strings.TrimSpace(s.SlackWebhookURL),
		NameMatch:       s.NameMatch,
		Timeout:         timeout,
		Interval:        interval,
		WarningDays:     warningDays,
		ErrorDays:       errorDays,
		Concurrency:     concurrency,
		MetricsPort:     metricsPort,
	}

	return cfg, nil
}

// parseURLs trims entries and splits comma-separated input into a slice.
func parseURLs(entries []string) []string {
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		for _, p := range strings.Split(entry, ",") {
			if u := strings.TrimSpace(p); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// ResetCurrentURL resets the current URL input for the next entry.
func (s *WizardState) ResetCurrentURL() {
	s.CurrentURL = ""
	s.AddAnother = false
}

// SaveCurrentURL saves the current URL to the list.
func (s *WizardState) SaveCurrentURL() {
	if u := strings.TrimSpace(s.CurrentURL); u != "" {
		s.URLs = append(s.URLs, u)
	}
}
