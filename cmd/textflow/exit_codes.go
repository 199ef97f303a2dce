package main

import (
	"errors"
	"os"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/config"
	"github.com/alnah/textflow/internal/fetch"
	"github.com/alnah/textflow/internal/hints"
)

// Exit codes. 0=success, 1=general, 2=usage, custom codes < 126.
const (
	ExitSuccess = 0 // Pipeline produced a result
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, settings, pipeline or validation
	ExitIO      = 3 // File not found, permission denied, fetch failure
	ExitBrowser = 4 // Headless browser errors
)

// CLI sentinel errors.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoCommands  = errors.New("no commands given (use --pipeline or --command)")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

// exitCodeFor maps an error to an exit code, matching wrapped errors.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, fetch.ErrBrowserConnect) ||
		errors.Is(err, fetch.ErrPageLoad) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, config.ErrPipelineNotFound) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fetch.ErrFetchFailed) ||
		errors.Is(err, fetch.ErrHTTPStatus) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoCommands) ||
		errors.Is(err, textflow.ErrValidation) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidSetting) ||
		errors.Is(err, config.ErrPipelineParse) ||
		errors.Is(err, config.ErrEmptyCommandName) ||
		errors.Is(err, config.ErrInvalidArgument) ||
		errors.Is(err, config.ErrInvalidCommandLine) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, getenv func(string) string) string {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	switch {
	case errors.Is(err, fetch.ErrBrowserConnect):
		return hints.ForBrowserConnect(getenv)
	case errors.Is(err, config.ErrConfigNotFound):
		dir, _ := os.UserConfigDir()
		return hints.ForConfigNotFound(dir)
	case errors.Is(err, config.ErrInvalidCommandLine):
		return hints.ForCommandLine()
	case errors.Is(err, textflow.ErrValidation):
		return hints.ForValidation()
	case errors.Is(err, fetch.ErrFetchFailed), errors.Is(err, fetch.ErrHTTPStatus):
		return hints.ForFetch()
	}
	return ""
}
