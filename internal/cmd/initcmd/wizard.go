package initcmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// errSetupCanceled is returned when the user declines to overwrite an
// existing file
var errSetupCanceled = errors.New("setup canceled")

// Wizard manages the interactive configuration wizard.
type Wizard struct {
	state      *WizardState
	outputPath string
}

// NewWizard creates a new wizard instance.
func NewWizard() *Wizard {
	return &Wizard{
		state: NewWizardState(),
	}
}

// SetOutputPath sets the output path (from command line flag).
func (w *Wizard) SetOutputPath(path string) {
	w.outputPath = path
	if path != "" {
		w.state.ConfigPath = path
	}
}

// Run executes the wizard flow.
func (w *Wizard) Run() error {
	// Setup signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println()
		fmt.Println(RenderWarning("Setup canceled by user"))
		os.Exit(0)
	}()

	fmt.Println()
	fmt.Println(RenderHeader())
	fmt.Println()

	// Step 1: Welcome and file configuration
	if err := NewWelcomeForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 2: Check for existing file
	if err := w.handleExistingFile(); err != nil {
		if errors.Is(err, errSetupCanceled) {
			return nil
		}
		return err
	}

	// Step 3: URLs (loop)
	fmt.Println(RenderSection("URLs to Check"))
	if err := w.runURLForms(); err != nil {
		return w.handleError(err)
	}

	// Step 4: Thresholds
	fmt.Println(RenderSection("Check Configuration"))
	if err := NewThresholdsForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 5: Notifications
	fmt.Println(RenderSection("Notifications"))
	if err := NewNotificationForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 6: Watch mode
	fmt.Println(RenderSection("Watch Mode"))
	if err := NewWatchForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 7: Generate and validate config
	cfg, err := w.state.ToConfig()
	if err != nil {
		return w.handleError(fmt.Errorf("failed to create configuration: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return w.handleValidationError(err)
	}

	// Step 8: Write config file
	fmt.Println()
	if err := WriteConfig(cfg, w.state.ConfigPath); err != nil {
		return w.handleError(err)
	}

	w.showSuccess()

	return nil
}

func (w *Wizard) runURLForms() error {
	urlNum := 1

	for {
		w.state.ResetCurrentURL()

		if err := NewURLForm(w.state, urlNum).Run(); err != nil {
			return err
		}

		w.state.SaveCurrentURL()

		if !w.state.AddAnother {
			break
		}

		urlNum++
	}

	if len(w.state.URLs) == 0 {
		return fmt.Errorf("at least one URL is required")
	}

	return nil
}

func (w *Wizard) handleExistingFile() error {
	if !FileExists(w.state.ConfigPath) {
		return nil
	}

	if err := NewOverwriteConfirmForm(w.state, w.state.ConfigPath).Run(); err != nil {
		return w.handleError(err)
	}

	if !w.state.OverwriteFile {
		fmt.Println(RenderWarning("Setup canceled: file already exists"))
		return errSetupCanceled
	}

	return nil
}

func (w *Wizard) handleError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println()
		fmt.Println(RenderWarning("Setup canceled"))
		os.Exit(0)
	}
	fmt.Println()
	fmt.Println(RenderError(err.Error()))
	return err
}

func (w *Wizard) handleValidationError(err error) error {
	fmt.Println()
	fmt.Println(RenderError("Configuration validation failed:"))
	fmt.Println(RenderError("  " + err.Error()))
	fmt.Println()
	fmt.Println(RenderInfo("Please run 'cw-sslcheck init' again with corrected values."))
	return err
}

func (w *Wizard) showSuccess() {
	notifications := "disabled"
	if strings.TrimSpace(w.state.SlackWebhookURL) != "" {
		notifications = "slack"
	}

	fmt.Println()
	fmt.Println(RenderSuccess("Config written to " + w.state.ConfigPath))
	fmt.Println(RenderSuccess("Validated successfully"))
	fmt.Println()

	fmt.Println(TitleStyle.Render("Configuration Summary:"))
	fmt.Println(RenderSummary([][2]string{
		{"URLs", strconv.Itoa(len(w.state.URLs))},
		{"Thresholds", w.state.WarningDays + "d warning / " + w.state.ErrorDays + "d error"},
		{"Matching", w.state.NameMatch},
		{"Notifications", notifications},
		{"Interval", w.state.Interval},
	}))
	fmt.Println()

	fmt.Println(TitleStyle.Render("Next steps:"))
	fmt.Println()
	fmt.Println("  To validate your config:")
	fmt.Println("    " + RenderCode("cw-sslcheck validate -c "+w.state.ConfigPath))
	fmt.Println()
	fmt.Println("  To run a single check:")
	fmt.Println("    " + RenderCode("cw-sslcheck check -c "+w.state.ConfigPath))
	fmt.Println()
	fmt.Println("  To keep checking on an interval:")
	fmt.Println("    " + RenderCode("cw-sslcheck watch -c "+w.state.ConfigPath))
	fmt.Println()
}

// RunNonInteractive writes a configuration built from SSLCHECK_* environment
// variables.
func RunNonInteractive(outputPath string) error {
	state := NewWizardState()
	state.ConfigPath = outputPath

	if urls := os.Getenv("SSLCHECK_URLS"); urls != "" {
		state.URLs = append(state.URLs, urls)
	}

	envOverrides := map[string]*string{
		"SSLCHECK_WARNING_DAYS":      &state.WarningDays,
		"SSLCHECK_ERROR_DAYS":        &state.ErrorDays,
		"SSLCHECK_LOG_LEVEL":         &state.LogLevel,
		"SSLCHECK_SLACK_WEBHOOK_URL": &state.SlackWebhookURL,
		"SSLCHECK_NAME_MATCH":        &state.NameMatch,
		"SSLCHECK_TIMEOUT":           &state.Timeout,
		"SSLCHECK_CONCURRENCY":       &state.Concurrency,
		"SSLCHECK_INTERVAL":          &state.Interval,
		"SSLCHECK_METRICS_PORT":      &state.MetricsPort,
	}
	for key, field := range envOverrides {
		if value := os.Getenv(key); value != "" {
			*field = value
		}
	}

	cfg, err := state.ToConfig()
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	if len(cfg.URLs) == 0 {
		return fmt.Errorf("SSLCHECK_URLS environment variable is required (comma-separated URLs)")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := WriteConfig(cfg, state.ConfigPath); err != nil {
		return err
	}

	fmt.Println(RenderSuccess("Config written to " + state.ConfigPath))
	return nil
}
