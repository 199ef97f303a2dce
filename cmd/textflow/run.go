package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/config"
	"github.com/alnah/textflow/internal/render"
)

func runRun(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRunFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	s, err := loadSettings(f.common, env)
	if err != nil {
		return err
	}
	pf, invs, err := loadInvocations(f.pipeline)
	if err != nil {
		return err
	}

	w, err := buildInput(positional, f, pf, env)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(s, env, f.templates, f.browser)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	opts := []textflow.Option{
		textflow.WithLogger(newLogger(s, env)),
		textflow.WithDebug(f.debug),
	}
	if env.Now != nil {
		opts = append(opts, textflow.WithClock(env.Now))
	}
	if f.url != "" {
		opts = append(opts, textflow.WithHeadCommands(textflow.NewInvocation("http", "url", f.url)))
	}

	p := textflow.NewPipeline(reg.Registry, invs, opts...)
	out := p.Execute(ctx, w)

	// An empty result may be the validation sentinel; report why.
	if out.Text == "" {
		if problems := p.Validate(); len(problems) > 0 {
			for _, msg := range problems {
				fmt.Fprintln(env.Stderr, msg)
			}
			return fmt.Errorf("%w: %d problem(s)", textflow.ErrValidation, len(problems))
		}
	}

	if err := writeOutput(f.output, out.Text, env); err != nil {
		return err
	}
	if f.history {
		printHistory(env.Stderr, out.History)
	}
	if f.debugReport != "" {
		report, err := render.DebugReport(out.History)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.debugReport, []byte(report), 0o644); err != nil { // #nosec G306 -- report is not sensitive
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}
	return nil
}

// buildInput resolves the initial document: an input file or "-", then
// --url (fetched by the head command), then the pipeline file's input,
// then piped stdin.
func buildInput(positional []string, f *runFlags, pf *config.PipelineFile, env *Environment) (*textflow.WorkingData, error) {
	var text, contentType, source, ext string
	if pf != nil {
		text, contentType, source = pf.Input, pf.ContentType, pf.Source
	}

	switch {
	case len(positional) == 1 && positional[0] == "-":
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
		text = string(data)
	case len(positional) == 1:
		data, err := os.ReadFile(positional[0]) // #nosec G304 -- input path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		text = string(data)
		ext = strings.TrimPrefix(filepath.Ext(positional[0]), ".")
		if source == "" {
			source = positional[0]
		}
	case f.url != "" || text != "":
	case env.Stdin != nil && (env.StdinIsTerminal == nil || !env.StdinIsTerminal()):
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
		text = string(data)
	}

	if f.contentType != "" {
		contentType = f.contentType
	}
	if f.source != "" {
		source = f.source
	}

	w := textflow.NewWorkingData(text, contentType, source)
	w.Extension = ext
	return w, nil
}

func writeOutput(path, text string, env *Environment) error {
	if path == "" {
		if _, err := io.WriteString(env.Stdout, text); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { // #nosec G306 -- output is not sensitive
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// printHistory writes one row per executed command.
func printHistory(w io.Writer, h textflow.History) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOMMAND\tIN\tOUT\tDELTA\tDURATION")
	for i, e := range h.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%+d\t%s\n",
			i+1, e.Command.Name, len([]rune(e.Input)), len([]rune(e.Output)), e.Delta, e.Duration.Round(time.Microsecond))
	}
	fmt.Fprintf(tw, "\tTOTAL\t%d\t\t\t%s\n", len([]rune(h.Input)), h.Duration.Round(time.Microsecond))
	_ = tw.Flush()
}
