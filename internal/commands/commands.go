// Package commands provides the standard textflow command library.
//
// Commands are registered into an explicit registry:
//
//	reg, err := commands.NewRegistry(commands.Deps{})
//	out := textflow.ExecutePipeline(ctx, reg, input, "", "", invocations)
package commands

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/assets"
	"github.com/alnah/textflow/internal/fetch"
	"github.com/alnah/textflow/internal/markup"
	"github.com/alnah/textflow/internal/render"
)

// Sentinel errors returned by command bodies. Any of them aborts the run.
var (
	ErrMissingArgument  = errors.New("missing argument")
	ErrNoMatch          = errors.New("selector matched nothing")
	ErrInvalidJSON      = errors.New("invalid JSON input")
	ErrUnsupportedInput = errors.New("unsupported input")
	ErrBrowserDisabled  = errors.New("browser rendering is not enabled")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoCSS            = errors.New("no CSS provided")
)

// Deps are the collaborators the command library needs. Zero fields get
// defaults: a plain HTTP client, fresh Liquid and Markdown renderers, no
// browser, no template document and the embedded assets.
type Deps struct {
	Fetcher fetch.Fetcher // used by http, add-css and template URLs
	Browser fetch.Fetcher // used by http render=true; nil disables it

	// Templates is an HTML document that templateSelector arguments are
	// resolved against.
	Templates string

	Liquid   *render.Liquid
	Markdown *render.Markdown

	// Assets supplies the make-table stylesheet.
	Assets assets.Loader
}

// library is Deps with defaults applied.
type library struct {
	fetcher   fetch.Fetcher
	browser   fetch.Fetcher
	templates *markup.Document
	liquid    *render.Liquid
	markdown  *render.Markdown
	tableCSS  string
}

func newLibrary(deps Deps) (*library, error) {
	lib := &library{
		fetcher:  deps.Fetcher,
		browser:  deps.Browser,
		liquid:   deps.Liquid,
		markdown: deps.Markdown,
	}
	if lib.fetcher == nil {
		lib.fetcher = fetch.NewHTTPClient()
	}
	if lib.liquid == nil {
		lib.liquid = render.NewLiquid()
	}
	if lib.markdown == nil {
		lib.markdown = render.NewMarkdown()
	}
	loader := deps.Assets
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	css, err := loader.LoadStyle("table")
	if err != nil {
		return nil, fmt.Errorf("loading table style: %w", err)
	}
	lib.tableCSS = css
	if strings.TrimSpace(deps.Templates) != "" {
		doc, err := markup.Parse(deps.Templates)
		if err != nil {
			return nil, fmt.Errorf("parsing template document: %w", err)
		}
		lib.templates = doc
	}
	return lib, nil
}

// commands returns every command in listing order.
func (l *library) commands() []*textflow.Command {
	return []*textflow.Command{
		noOp(),
		setDebug(),
		setType(),
		setContainerSize(),
		appendText(),
		prependText(),
		newLines(),
		wrapLines(),
		removeLines(),
		wrap(),
		extract(),
		extractMultiple(),
		remove(),
		absolutize(),
		l.addCSS(),
		l.http(),
		jsonataQuery(),
		l.markdownCommand(),
		l.makeTable(),
		l.templateJSON(),
		l.templateHTML(),
	}
}

// Register adds the standard commands to reg.
func Register(reg *textflow.Registry, deps Deps) error {
	lib, err := newLibrary(deps)
	if err != nil {
		return err
	}
	return reg.Register(lib.commands()...)
}

// NewRegistry returns a registry holding the standard commands.
func NewRegistry(deps Deps) (*textflow.Registry, error) {
	reg := textflow.NewRegistry()
	if err := Register(reg, deps); err != nil {
		return nil, err
	}
	return reg, nil
}

// Validator helpers.

// required passes when any alias has a non-empty value.
func required(message string, aliases ...string) textflow.Validator {
	return textflow.Validator{
		Test:    func(inv *textflow.Invocation) bool { return inv.HasValue(aliases...) },
		Message: message,
	}
}

// optional passes when no alias has a value, or when check accepts it.
func optional(message string, check func(string) bool, aliases ...string) textflow.Validator {
	return textflow.Validator{
		Test: func(inv *textflow.Invocation) bool {
			v, ok := inv.Arg(aliases...)
			return !ok || v == "" || check(v)
		},
		Message: message,
	}
}

func nonNegativeInt(v string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n >= 0
}

// nonNegativeNumber accepts any number >= 0, fractions included.
func nonNegativeNumber(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && !math.IsNaN(f) && f >= 0
}

func validSelector(message string, aliases ...string) textflow.Validator {
	return optional(message, markup.ValidSelector, aliases...)
}
