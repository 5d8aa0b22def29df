package initcmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/certwatch-app/cw-sslcheck/internal/certs"
)

// ValidateConfigPath validates the output file path.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}

	if ext := filepath.Ext(path); ext != ".toml" {
		return fmt.Errorf("config file must have a .toml extension")
	}

	// Check if directory exists or can be created
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil // We'll create it during write
			}
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("'%s' is not a directory", dir)
		}
	}

	return nil
}

// ValidateURL validates a URL to check.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" {
		return fmt.Errorf("URL must use https (use 'https://example.com' not 'example.com')")
	}

	if u.Hostname() == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// ValidateDays validates a day threshold.
func ValidateDays(s string) error {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("days must be a number")
	}

	if days < 0 || days > 3650 {
		return fmt.Errorf("days must be between 0 and 3650")
	}

	return nil
}

// ValidateWebhookURL validates the Slack webhook URL.
func ValidateWebhookURL(endpoint string) error {
	if endpoint == "" {
		return nil // Notifications disabled
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use http or https")
	}

	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// ValidateNameMatch validates the name matching mode.
func ValidateNameMatch(mode string) error {
	_, err := certs.ParseMatchMode(mode)
	return err
}

// ValidateTimeout validates the per-check timeout.
func ValidateTimeout(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("timeout must be a duration like 30s")
	}

	if d < time.Second {
		return fmt.Errorf("timeout must be at least 1s")
	}

	return nil
}

// ValidateConcurrency validates the concurrency limit.
func ValidateConcurrency(s string) error {
	if s == "" {
		return nil // Unbounded
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("concurrency must be a number")
	}

	if n < 0 || n > 500 {
		return fmt.Errorf("concurrency must be between 0 and 500")
	}

	return nil
}

// ValidatePort validates the metrics port; 0 disables the server.
func ValidatePort(portStr string) error {
	if portStr == "" {
		return nil // Will use default
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}

	return nil
}
