// Package report renders check outcomes as text lines or JSON/YAML documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/certwatch-app/cw-sslcheck/internal/certs"
	"github.com/certwatch-app/cw-sslcheck/internal/checker"
)

// Status markers used in text lines
const (
	CompletedMark = "\u2714"
	ValidMark     = "\u2705"
	InvalidMark   = "\u274C"
	GreenCircle   = "\U0001F7E2"
	YellowCircle  = "\U0001F7E1"
	RedCircle     = "\U0001F534"
)

// Format selects the output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an --output value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// FreshnessMark returns the coloured circle for a freshness state
func FreshnessMark(f certs.Freshness) string {
	switch f {
	case certs.FreshnessWarning:
		return YellowCircle
	case certs.FreshnessError:
		return RedCircle
	default:
		return GreenCircle
	}
}

// Result renders the verdict part of a line
func Result(v *certs.Verdict) string {
	validMark := InvalidMark
	if v.Valid {
		validMark = ValidMark
	}
	return fmt.Sprintf("CertCheck - Issuer: %s - is_valid: %s - %s %d days remaining",
		v.Issuer, validMark, FreshnessMark(v.Freshness), v.DaysRemaining)
}

// Line renders one outcome in the plain text format
func Line(o checker.Outcome) string {
	if o.Verdict != nil {
		return fmt.Sprintf("URL: %s Completed:%s Result: %s", o.URL, CompletedMark, Result(o.Verdict))
	}
	return fmt.Sprintf("URL: %s Error:%s Message: %s", o.URL, InvalidMark, errorMessage(o))
}

// Lines renders every outcome, preserving order
func Lines(outcomes []checker.Outcome) []string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		lines = append(lines, Line(o))
	}
	return lines
}

// Text joins the plain lines with newlines
func Text(outcomes []checker.Outcome) string {
	return strings.Join(Lines(outcomes), "\n")
}

func errorMessage(o checker.Outcome) string {
	if o.Err == nil {
		return "unknown error"
	}
	return o.Err.Error()
}

func styleFor(o checker.Outcome) lipgloss.Style {
	switch {
	case o.Verdict == nil, !o.Verdict.Valid, o.Verdict.Freshness == certs.FreshnessError:
		return errorStyle
	case o.Verdict.Freshness == certs.FreshnessWarning:
		return warningStyle
	default:
		return okStyle
	}
}

// Summary counts outcomes by state. Failed outcomes are not counted in the
// certificate buckets.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Valid   int `json:"valid" yaml:"valid"`
	Invalid int `json:"invalid" yaml:"invalid"`
	OK      int `json:"ok" yaml:"ok"`
	Warning int `json:"warning" yaml:"warning"`
	Error   int `json:"error" yaml:"error"`
	Failed  int `json:"failed" yaml:"failed"`
}

// Summarize tallies outcomes
func Summarize(outcomes []checker.Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Verdict == nil {
			s.Failed++
			continue
		}
		if o.Verdict.Valid {
			s.Valid++
		} else {
			s.Invalid++
		}
		switch o.Verdict.Freshness {
		case certs.FreshnessOK:
			s.OK++
		case certs.FreshnessWarning:
			s.Warning++
		case certs.FreshnessError:
			s.Error++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d checked: %d valid, %d invalid, %d warning, %d error, %d failed",
		s.Total, s.Valid, s.Invalid, s.Warning, s.Error, s.Failed)
}

// Entry is the document form of one outcome
type Entry struct {
	CheckedAt  time.Time      `json:"checked_at" yaml:"checked_at"`
	Result     *certs.Verdict `json:"result,omitempty" yaml:"result,omitempty"`
	URL        string         `json:"url" yaml:"url"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	DurationMS int64          `json:"duration_ms" yaml:"duration_ms"`
}

// Document is the JSON/YAML report
type Document struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Results     []Entry   `json:"results" yaml:"results"`
	Summary     Summary   `json:"summary" yaml:"summary"`
}

// NewDocument builds a Document stamped with generatedAt
func NewDocument(outcomes []checker.Outcome, generatedAt time.Time) Document {
	doc := Document{
		GeneratedAt: generatedAt.UTC(),
		Results:     make([]Entry, 0, len(outcomes)),
		Summary:     Summarize(outcomes),
	}
	for _, o := range outcomes {
		e := Entry{
			CheckedAt:  o.CheckedAt,
			Result:     o.Verdict,
			URL:        o.URL,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
			e.ErrorKind = o.Err.Kind.String()
		}
		doc.Results = append(doc.Results, e)
	}
	return doc
}

// Writer renders outcomes to an io.Writer
type Writer struct {
	out    io.Writer
	now    func() time.Time
	format Format
	color  bool
}

// Option configures a Writer
type Option func(*Writer)

// WithColor enables lipgloss colouring of text lines
func WithColor(enabled bool) Option {
	return func(w *Writer) { w.color = enabled }
}

// WithClock overrides the document timestamp source
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a Writer for the given format
func NewWriter(out io.Writer, format Format, opts ...Option) *Writer {
	w := &Writer{
		out:    out,
		now:    time.Now,
		format: format,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders outcomes in the configured format
func (w *Writer) Write(outcomes []checker.Outcome) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(outcomes, w.now())); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(outcomes, w.now())); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return enc.Close()
	default:
		return w.writeText(outcomes)
	}
}

func (w *Writer) writeText(outcomes []checker.Outcome) error {
	for _, o := range outcomes {
		line := Line(o)
		if w.color {
			line = styleFor(o).Render(line)
		}
		if _, err := fmt.Fprintln(w.out, line); err != nil {
			return err
		}
	}

	summary := Summarize(outcomes).String()
	if w.color {
		summary = mutedStyle.Render(summary)
	}
	_, err := fmt.Fprintln(w.out, summary)
	return err
}
