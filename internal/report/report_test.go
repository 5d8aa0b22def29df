package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/certwatch-app/cw-sslcheck/internal/certs"
	"github.com/certwatch-app/cw-sslcheck/internal/checker"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func okOutcome(url string, valid bool, days int, f certs.Freshness) checker.Outcome {
	return checker.Outcome{
		CheckedAt: fixedNow,
		URL:       url,
		Duration:  120 * time.Millisecond,
		Verdict: &certs.Verdict{
			Issuer:        "Let's Encrypt",
			Subject:       "example.com",
			DaysRemaining: days,
			Freshness:     f,
			Valid:         valid,
		},
	}
}

func failedOutcome(url string, kind checker.Kind, err error) checker.Outcome {
	return checker.Outcome{
		CheckedAt: fixedNow,
		URL:       url,
		Err:       &checker.CheckError{Kind: kind, URL: url, Err: err},
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name    string
		outcome checker.Outcome
		want    string
	}{
		{
			name:    "valid ok",
			outcome: okOutcome("https://example.com", true, 80, certs.FreshnessOK),
			want:    "URL: https://example.com Completed:✔ Result: CertCheck - Issuer: Let's Encrypt - is_valid: ✅ - \U0001F7E2 80 days remaining",
		},
		{
			name:    "invalid warning",
			outcome: okOutcome("https://warn.example", false, 20, certs.FreshnessWarning),
			want:    "URL: https://warn.example Completed:✔ Result: CertCheck - Issuer: Let's Encrypt - is_valid: ❌ - \U0001F7E1 20 days remaining",
		},
		{
			name:    "expired",
			outcome: okOutcome("https://expired.example", false, 0, certs.FreshnessError),
			want:    "URL: https://expired.example Completed:✔ Result: CertCheck - Issuer: Let's Encrypt - is_valid: ❌ - \U0001F534 0 days remaining",
		},
		{
			name:    "no certificate",
			outcome: failedOutcome("http://plain.example", checker.KindNoCertificate, errors.New("none")),
			want:    "URL: http://plain.example Error:❌ Message: no SSL certificates found for URL: http://plain.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Line(tt.outcome); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestText_PreservesOrder(t *testing.T) {
	outcomes := []checker.Outcome{
		failedOutcome("not a url", checker.KindURLParse, errors.New("bad")),
		okOutcome("https://b.example", true, 60, certs.FreshnessOK),
	}

	lines := strings.Split(Text(outcomes), "\n")
	if len(lines) != 2 {
		t.Fatalf("Text() produced %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "URL: not a url Error:") {
		t.Errorf("lines[0] = %q, want failed line first", lines[0])
	}
	if !strings.HasPrefix(lines[1], "URL: https://b.example Completed:") {
		t.Errorf("lines[1] = %q, want success line second", lines[1])
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []checker.Outcome{
		okOutcome("https://a.example", true, 80, certs.FreshnessOK),
		okOutcome("https://b.example", true, 20, certs.FreshnessWarning),
		okOutcome("https://c.example", false, 0, certs.FreshnessError),
		failedOutcome("https://d.example", checker.KindNetwork, errors.New("timeout")),
	}

	got := Summarize(outcomes)
	want := Summary{Total: 4, Valid: 2, Invalid: 1, OK: 1, Warning: 1, Error: 1, Failed: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	outcomes := []checker.Outcome{okOutcome("https://a.example", true, 80, certs.FreshnessOK)}

	if err := NewWriter(&buf, FormatText).Write(outcomes); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, Line(outcomes[0])) {
		t.Errorf("output = %q, want plain line", out)
	}
	if !strings.Contains(out, "1 checked: 1 valid") {
		t.Errorf("output = %q, want summary", out)
	}
}

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	outcomes := []checker.Outcome{
		okOutcome("https://a.example", false, 10, certs.FreshnessError),
		failedOutcome("https://b.example", checker.KindNetwork, errors.New("connection refused")),
	}

	w := NewWriter(&buf, FormatJSON, WithClock(func() time.Time { return fixedNow }))
	if err := w.Write(outcomes); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc struct {
		GeneratedAt time.Time `json:"generated_at"`
		Results     []struct {
			Result *struct {
				Freshness string `json:"freshness"`
				IsValid   bool   `json:"is_valid"`
				Days      int    `json:"days_remaining"`
			} `json:"result"`
			URL       string `json:"url"`
			Error     string `json:"error"`
			ErrorKind string `json:"error_kind"`
		} `json:"results"`
		Summary Summary `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("json.Unmarshal() error = %v\n%s", err, buf.String())
	}

	if !doc.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v, want %v", doc.GeneratedAt, fixedNow)
	}
	if len(doc.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(doc.Results))
	}
	first := doc.Results[0]
	if first.Result == nil || first.Result.Freshness != "error" || first.Result.IsValid || first.Result.Days != 10 {
		t.Errorf("Results[0].Result = %+v, want error/invalid/10", first.Result)
	}
	second := doc.Results[1]
	if second.Result != nil {
		t.Errorf("Results[1].Result = %+v, want nil", second.Result)
	}
	if second.ErrorKind != "network" {
		t.Errorf("Results[1].ErrorKind = %q, want network", second.ErrorKind)
	}
	if second.Error != "network error: connection refused" {
		t.Errorf("Results[1].Error = %q", second.Error)
	}
	if doc.Summary.Failed != 1 || doc.Summary.Error != 1 {
		t.Errorf("Summary = %+v, want 1 failed and 1 error", doc.Summary)
	}
}

func TestWriter_YAML(t *testing.T) {
	var buf bytes.Buffer
	outcomes := []checker.Outcome{okOutcome("https://a.example", true, 45, certs.FreshnessOK)}

	w := NewWriter(&buf, FormatYAML, WithClock(func() time.Time { return fixedNow }))
	if err := w.Write(outcomes); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v\n%s", err, buf.String())
	}
	results, ok := doc["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("results = %v, want one entry", doc["results"])
	}
	entry := results[0].(map[string]any)
	result := entry["result"].(map[string]any)
	if result["freshness"] != "ok" {
		t.Errorf("freshness = %v, want ok", result["freshness"])
	}
	if result["is_valid"] != true {
		t.Errorf("is_valid = %v, want true", result["is_valid"])
	}
	if entry["url"] != "https://a.example" {
		t.Errorf("url = %v, want https://a.example", entry["url"])
	}
}
