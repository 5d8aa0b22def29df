package initcmd

import (
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.com", false},
		{"valid with port", "https://example.com:8443", false},
		{"valid with path", "https://example.com/health", false},
		{"valid ip", "https://192.168.1.1", false},
		{"surrounding spaces", "  https://example.com  ", false},
		{"empty", "", true},
		{"missing scheme", "example.com", true},
		{"http scheme", "http://example.com", true},
		{"no host", "https://", true},
		{"invalid url", "https://exa mple.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDays(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid 30", "30", false},
		{"valid zero", "0", false},
		{"valid padded", " 14 ", false},
		{"negative", "-1", true},
		{"too high", "3651", true},
		{"not a number", "two weeks", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDays(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDays(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{"valid slack", "https://hooks.slack.com/services/T000/B000/XXXX", false},
		{"valid http", "http://localhost:3000/hook", false},
		{"empty (disabled)", "", false},
		{"missing scheme", "hooks.slack.com/services", true},
		{"ftp scheme", "ftp://example.com", true},
		{"invalid url", "not a url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebhookURL(tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWebhookURL(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNameMatch(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"exact", false},
		{"contains", false},
		{"", false},
		{"regex", true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			err := ValidateNameMatch(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNameMatch(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid 30s", "30s", false},
		{"valid 1m", "1m", false},
		{"exactly 1s", "1s", false},
		{"too short", "500ms", true},
		{"no unit", "30", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeout(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeout(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateConcurrency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"unbounded", "0", false},
		{"empty (unbounded)", "", false},
		{"valid 10", "10", false},
		{"valid 500", "500", false},
		{"too high", "501", true},
		{"negative", "-1", true},
		{"not a number", "many", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConcurrency(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConcurrency(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name    string
		portStr string
		wantErr bool
	}{
		{"valid 9402", "9402", false},
		{"valid 65535", "65535", false},
		{"zero (disabled)", "0", false},
		{"empty (default)", "", false},
		{"negative", "-1", true},
		{"too high", "65536", true},
		{"not a number", "abc", true},
		{"float", "443.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.portStr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePort(%q) error = %v, wantErr %v", tt.portStr, err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid relative", "./config.toml", false},
		{"valid current dir", "config.toml", false},
		{"missing dir is created later", "/nonexistent-dir/config.toml", false},
		{"wrong extension", "./config.yaml", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
