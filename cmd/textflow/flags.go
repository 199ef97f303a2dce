package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	logLevel string
	logJSON  bool
}

// pipelineFlags select the commands to run or validate.
type pipelineFlags struct {
	pipeline string
	commands []string
}

// runFlags holds all flags for the run command.
type runFlags struct {
	common   commonFlags
	pipeline pipelineFlags

	output      string
	contentType string
	source      string
	url         string
	templates   string
	browser     bool
	debug       bool
	history     bool
	debugReport string
}

// validateFlags holds flags for the validate command.
type validateFlags struct {
	common   commonFlags
	pipeline pipelineFlags
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common    commonFlags
	addr      string
	templates string
	browser   bool
	trace     bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "settings file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&f.logJSON, "log-json", false, "log as JSON")
}

func addPipelineFlags(fs *flag.FlagSet, f *pipelineFlags) {
	fs.StringVarP(&f.pipeline, "pipeline", "p", "", "pipeline definition file (YAML)")
	// StringArray, not StringSlice: argument values may contain commas.
	fs.StringArrayVarP(&f.commands, "command", "C", nil, "command line, e.g. 'wrap tag=p' (repeatable)")
}

func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseRunFlags parses run command flags and returns positional args.
func parseRunFlags(args []string, stderr io.Writer) (*runFlags, []string, error) {
	f := &runFlags{}
	fs := newFlagSet("run", stderr, printRunUsage)

	addCommonFlags(fs, &f.common)
	addPipelineFlags(fs, &f.pipeline)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.StringVarP(&f.contentType, "content-type", "t", "", "input content type (default: from pipeline, extension or sniffing)")
	fs.StringVar(&f.source, "source", "", "input source locator")
	fs.StringVarP(&f.url, "url", "u", "", "fetch input from URL with a leading http command")
	fs.StringVar(&f.templates, "templates", "", "HTML document templateSelector resolves against")
	fs.BoolVar(&f.browser, "browser", false, "enable headless browser fetch for http render=true")
	fs.BoolVarP(&f.debug, "debug", "d", false, "enable engine debug logging")
	fs.BoolVar(&f.history, "history", false, "print execution history to stderr")
	fs.StringVar(&f.debugReport, "debug-report", "", "write an HTML history report to file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	if fs.NArg() > 1 {
		return nil, nil, fmt.Errorf("%w: run takes at most one input, got %d", ErrUsage, fs.NArg())
	}
	return f, fs.Args(), nil
}

// parseValidateFlags parses validate command flags.
func parseValidateFlags(args []string, stderr io.Writer) (*validateFlags, error) {
	f := &validateFlags{}
	fs := newFlagSet("validate", stderr, printValidateUsage)

	addCommonFlags(fs, &f.common)
	addPipelineFlags(fs, &f.pipeline)

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from settings, :8080)")
	fs.StringVar(&f.templates, "templates", "", "HTML document templateSelector resolves against")
	fs.BoolVar(&f.browser, "browser", false, "enable headless browser fetch for http render=true")
	fs.BoolVar(&f.trace, "trace", false, "export OpenTelemetry spans to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// usageError keeps flag.ErrHelp intact so -h exits 0.
func usageError(err error) error {
	if err == flag.ErrHelp {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
