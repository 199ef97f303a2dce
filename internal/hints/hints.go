// Package hints provides actionable hints for common CLI failures.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"
)

// IsInContainer detects Docker and similar runtimes by /.dockerenv.
var IsInContainer = func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// ForBrowserConnect suggests browser settings, adding the sandbox switch
// in CI and containers. getenv is usually os.Getenv.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	inCI := getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && getenv("TEXTFLOW_BROWSER__NO_SANDBOX") == "" {
		hints = append(hints, "set TEXTFLOW_BROWSER__NO_SANDBOX=true for Docker/CI")
	}
	if getenv("TEXTFLOW_BROWSER__BIN") == "" {
		hints = append(hints, "set TEXTFLOW_BROWSER__BIN to use a local Chrome")
	}

	return formatHints(hints)
}

// ForConfigNotFound suggests --config or the per-user settings location.
func ForConfigNotFound(userConfigDir string) string {
	hint := "use --config /path/to/settings.yaml"
	if userConfigDir != "" {
		hint += " or create " + filepath.Join(userConfigDir, "textflow", "settings.yaml")
	}
	return format(hint)
}

// ForValidation points at the command listing.
func ForValidation() string {
	return format("run 'textflow commands' to list commands and their arguments")
}

// ForCommandLine explains --command quoting.
func ForCommandLine() string {
	return format(`write arguments as key=value; quote values with spaces: 'wrap class="a b"'`)
}

// ForFetch suggests raising the fetch timeout.
func ForFetch() string {
	return format("check the URL; for slow hosts raise TEXTFLOW_HTTP__TIMEOUT")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
