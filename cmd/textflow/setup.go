package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/commands"
	"github.com/alnah/textflow/internal/config"
	"github.com/alnah/textflow/internal/fetch"
	"github.com/alnah/textflow/internal/logging"
)

// loadSettings loads the settings file (flag, then TEXTFLOW_CONFIG) and
// applies flag overrides.
func loadSettings(f commonFlags, env *Environment) (*config.Settings, error) {
	name := f.config
	if name == "" && env.Getenv != nil {
		name = env.Getenv("TEXTFLOW_CONFIG")
	}

	s, err := config.LoadSettings(name)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		s.Log.Level = f.logLevel
	}
	if f.logJSON {
		s.Log.Format = "json"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func newLogger(s *config.Settings, env *Environment) *slog.Logger {
	return logging.NewWithWriter(env.Stderr, s.Log.Level, strings.EqualFold(s.Log.Format, "json"))
}

// registry bundles the command registry with the resources it holds.
type registry struct {
	*textflow.Registry
	browser *fetch.BrowserFetcher
}

// Close releases the headless browser, if one was started.
func (r *registry) Close() error {
	if r.browser == nil {
		return nil
	}
	return r.browser.Close()
}

// buildRegistry wires fetchers and the template document into the command
// library. templatesPath overrides settings; browser forces the browser on.
func buildRegistry(s *config.Settings, env *Environment, templatesPath string, browser bool) (*registry, error) {
	deps := commands.Deps{Fetcher: env.Fetcher}
	if deps.Fetcher == nil {
		deps.Fetcher = fetch.NewHTTPClient(
			fetch.WithTimeout(s.HTTP.Timeout),
			fetch.WithUserAgent(s.HTTP.UserAgent),
			fetch.WithMaxBodySize(s.HTTP.MaxBodySize),
		)
	}

	if templatesPath == "" {
		templatesPath = s.Templates.Document
	}
	if templatesPath != "" {
		data, err := os.ReadFile(templatesPath) // #nosec G304 -- template path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: template document: %w", ErrReadInput, err)
		}
		deps.Templates = string(data)
	}

	r := &registry{}
	if browser || s.Browser.Enabled {
		r.browser = fetch.NewBrowserFetcher(
			fetch.WithBrowserBin(s.Browser.Bin),
			fetch.WithNoSandbox(s.Browser.NoSandbox),
			fetch.WithPageTimeout(s.Browser.Timeout),
		)
		deps.Browser = r.browser
	}

	reg, err := commands.NewRegistry(deps)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	r.Registry = reg
	return r, nil
}

// loadInvocations collects --pipeline commands followed by --command lines.
func loadInvocations(f pipelineFlags) (*config.PipelineFile, []textflow.Invocation, error) {
	var (
		pf   *config.PipelineFile
		invs []textflow.Invocation
	)

	if f.pipeline != "" {
		var err error
		if pf, err = config.LoadPipeline(f.pipeline); err != nil {
			return nil, nil, err
		}
		if invs, err = pf.Invocations(); err != nil {
			return nil, nil, err
		}
	}

	for _, line := range f.commands {
		inv, err := config.ParseCommandLine(line)
		if err != nil {
			return nil, nil, err
		}
		invs = append(invs, inv)
	}

	if len(invs) == 0 {
		return nil, nil, ErrNoCommands
	}
	return pf, invs, nil
}
