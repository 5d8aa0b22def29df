package initcmd

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Theme colors - using CertWatch brand colors
var (
	colorPrimary   = lipgloss.Color("#0EA5E9") // Sky blue
	colorSuccess   = lipgloss.Color("#22C55E") // Green
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorError     = lipgloss.Color("#EF4444") // Red
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorHighlight = lipgloss.Color("#A855F7") // Purple
	colorDark      = lipgloss.Color("#1F2937")
	colorLight     = lipgloss.Color("#F9FAFB")
)

var (
	// TitleStyle for section headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// MutedStyle for labels and secondary text
	MutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	codeStyle    = lipgloss.NewStyle().Background(colorDark).Foreground(colorLight).Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1).MarginBottom(1)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)
)

const sectionWidth = 44

// CreateTheme returns a custom huh theme matching CertWatch branding.
func CreateTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(colorPrimary)
	t.Focused.Description = t.Focused.Description.Foreground(colorMuted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(colorHighlight)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(colorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(colorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(colorError)

	t.Blurred.Title = t.Blurred.Title.Foreground(colorMuted)

	return t
}

// RenderHeader renders the main wizard header.
func RenderHeader() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorLight).
		Background(colorPrimary).
		Padding(0, 2).
		Render(" cw-sslcheck Setup ")
}

// RenderSection renders a section divider padded to a fixed width.
func RenderSection(title string) string {
	fill := sectionWidth - len(title) - 5
	if fill < 3 {
		fill = 3
	}
	return sectionStyle.Render("─── " + title + " " + strings.Repeat("─", fill))
}

// RenderSummary renders label/value rows inside a bordered box.
func RenderSummary(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := r[0] + ":" + strings.Repeat(" ", width-len(r[0])+1)
		lines = append(lines, MutedStyle.Render(label)+r[1])
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}

// RenderSuccess renders a success message.
func RenderSuccess(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// RenderError renders an error message.
func RenderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// RenderWarning renders a warning message.
func RenderWarning(msg string) string {
	return warningStyle.Render("! " + msg)
}

// RenderInfo renders an info message.
func RenderInfo(msg string) string {
	return MutedStyle.Render("→ " + msg)
}

// RenderCode renders a code/command.
func RenderCode(code string) string {
	return codeStyle.Render(code)
}
