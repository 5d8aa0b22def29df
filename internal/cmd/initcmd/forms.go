package initcmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// NewWelcomeForm creates the welcome and file configuration form.
func NewWelcomeForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cw-sslcheck Setup!").
				Description("This wizard will help you create a configuration file for cw-sslcheck.\n\n"+
					"You'll need:\n"+
					"  • The HTTPS URLs whose certificates you want to check\n"+
					"  • Optionally, a Slack incoming webhook URL for reports"),

			huh.NewInput().
				Title("Config file path").
				Description("Where to save the configuration file").
				Placeholder("./config.toml").
				Value(&state.ConfigPath).
				Validate(ValidateConfigPath),
		),
	).WithTheme(CreateTheme())
}

// NewThresholdsForm creates the expiry threshold and matching form.
func NewThresholdsForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Check Configuration").
				Description("When should a certificate be reported as expiring?"),

			huh.NewInput().
				Title("Warning days").
				Description("Report a warning when fewer days than this remain").
				Placeholder("30").
				Value(&state.WarningDays).
				Validate(ValidateDays),

			huh.NewInput().
				Title("Error days").
				Description("Report an error when fewer days than this remain").
				Placeholder("14").
				Value(&state.ErrorDays).
				Validate(ValidateDays),

			huh.NewSelect[string]().
				Title("Hostname matching").
				Description("How the URL host is compared with the certificate names").
				Options(
					huh.NewOption("Exact (recommended)", "exact"),
					huh.NewOption("Contains (legacy substring match)", "contains"),
				).
				Value(&state.NameMatch),

			huh.NewSelect[string]().
				Title("Timeout").
				Description("Maximum time for a single check").
				Options(
					huh.NewOption("10 seconds", "10s"),
					huh.NewOption("30 seconds (recommended)", "30s"),
					huh.NewOption("1 minute", "1m"),
				).
				Value(&state.Timeout),

			huh.NewSelect[string]().
				Title("Log Level").
				Description("Logging verbosity").
				Options(
					huh.NewOption("Trace (most verbose)", "trace"),
					huh.NewOption("Debug (verbose)", "debug"),
					huh.NewOption("Info (recommended)", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error (quiet)", "error"),
				).
				Value(&state.LogLevel),
		),
	).WithTheme(CreateTheme())
}

// NewNotificationForm creates the Slack webhook form.
func NewNotificationForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Notifications").
				Description("Post every report to a Slack channel (optional)"),

			huh.NewInput().
				Title("Slack webhook URL").
				Description("Leave empty to disable notifications").
				Placeholder("https://hooks.slack.com/services/...").
				Value(&state.SlackWebhookURL).
				EchoMode(huh.EchoModePassword).
				Validate(ValidateWebhookURL),
		),
	).WithTheme(CreateTheme())
}

// NewWatchForm creates the watch mode configuration form.
func NewWatchForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Watch Mode").
				Description("Settings used by 'cw-sslcheck watch'"),

			huh.NewSelect[string]().
				Title("Check Interval").
				Description("How often to re-check all URLs").
				Options(
					huh.NewOption("15 minutes", "15m"),
					huh.NewOption("1 hour (recommended)", "1h"),
					huh.NewOption("6 hours", "6h"),
					huh.NewOption("24 hours", "24h"),
				).
				Value(&state.Interval),

			huh.NewSelect[string]().
				Title("Metrics Server Port").
				Description("Port for Prometheus metrics endpoint (/metrics). Set to 0 to disable.").
				Options(
					huh.NewOption("9402 (default)", "9402"),
					huh.NewOption("9090", "9090"),
					huh.NewOption("8080", "8080"),
					huh.NewOption("Disabled", "0"),
				).
				Value(&state.MetricsPort),

			huh.NewInput().
				Title("Concurrency").
				Description("Maximum checks in flight (0 checks every URL at once)").
				Placeholder("0").
				Value(&state.Concurrency).
				Validate(ValidateConcurrency),
		),
	).WithTheme(CreateTheme())
}

// NewURLForm creates a URL entry form.
func NewURLForm(state *WizardState, urlNum int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("URL #%d", urlNum)).
				Description("Add an HTTPS endpoint to check"),

			huh.NewInput().
				Title("URL").
				Description("The URL to check (e.g., https://api.example.com)").
				Placeholder("https://api.example.com").
				Value(&state.CurrentURL).
				Validate(ValidateURL),

			huh.NewConfirm().
				Title("Add another URL?").
				Value(&state.AddAnother).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithTheme(CreateTheme())
}

// NewOverwriteConfirmForm creates a form to confirm file overwrite.
func NewOverwriteConfirmForm(state *WizardState, path string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("File '%s' already exists. Overwrite?", path)).
				Description("The existing file will be replaced with the new configuration.").
				Value(&state.OverwriteFile).
				Affirmative("Yes, overwrite").
				Negative("No, cancel"),
		),
	).WithTheme(CreateTheme())
}
