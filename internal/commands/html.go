package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/fetch"
	"github.com/alnah/textflow/internal/markup"
)

func wrap() *textflow.Command {
	return &textflow.Command{
		Name:        "wrap",
		Title:       "Wrap Content",
		Description: "Wrap content in an HTML element with optional class and id attributes.",
		Args: []textflow.ArgSpec{
			{Name: "tag", Type: "string", Description: "HTML tag name (default: div). Alias: tagName."},
			{Name: "tagName", Type: "string", Description: "Alias of tag."},
			{Name: "class", Type: "string", Description: "CSS class names (space-separated). Alias: className."},
			{Name: "className", Type: "string", Description: "Alias of class."},
			{Name: "id", Type: "string", Description: "Element ID"},
		},
		AllowedContentTypes: []string{textflow.AnyContentType},
		Validators: []textflow.Validator{
			optional("If provided, the tag name must be a valid HTML tag name.", markup.ValidTagName, "tag", "tagName"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			tag := inv.ArgOr("", "tag", "tagName")
			if tag == "" {
				tag = "div"
			}

			var attrs []html.Attribute
			if classes := strings.Fields(inv.ArgOr("", "class", "className")); len(classes) > 0 {
				attrs = append(attrs, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
			}
			if id := inv.ArgOr("", "id"); id != "" {
				attrs = append(attrs, html.Attribute{Key: "id", Val: id})
			}

			out, err := markup.Wrap(w.Text, tag, attrs...)
			if err != nil {
				return nil, err
			}
			return textflow.PatchText(out, "text/html"), nil
		},
	}
}

func extract() *textflow.Command {
	return &textflow.Command{
		Name:        "extract",
		Title:       "Extract Element",
		Description: "Extract elements from HTML using a CSS selector. Multiple matches are joined with newlines.",
		Args: []textflow.ArgSpec{
			{Name: "selector", Type: "string", Description: "CSS selector"},
			{Name: "first", Type: "boolean", Description: "Extract only the first matching element (default: false)"},
			{Name: "scope", Type: "string", Description: "Scope of extraction: 'inner', 'outer', 'text', or @attribute name (default: 'outer')"},
		},
		AllowedContentTypes:   []string{"html"},
		DisallowFreeArguments: true,
		Validators: []textflow.Validator{
			required("You must provide a CSS selector.", "selector"),
			validSelector("The selector must be a valid CSS selector.", "selector"),
			optional("Scope must be 'inner', 'outer', 'text', or an attribute name prefixed with '@'.", func(v string) bool {
				_, err := markup.ParseScope(v)
				return err == nil
			}, "scope"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			selector := inv.ArgOr("", "selector")
			scope, err := markup.ParseScope(inv.ArgOr("", "scope"))
			if err != nil {
				return nil, err
			}

			parts, err := markup.Extract(w.Text, selector, scope)
			if err != nil {
				return nil, err
			}
			if inv.Bool("first") {
				if len(parts) == 0 {
					return nil, fmt.Errorf("%w: %q", ErrNoMatch, selector)
				}
				parts = parts[:1]
			}
			return textflow.ReplaceText(strings.Join(parts, "\n")), nil
		},
	}
}

func extractMultiple() *textflow.Command {
	return &textflow.Command{
		Name:        "extract-multiple",
		Title:       "Extract Multiple Elements",
		Description: "Extract multiple elements from HTML with optional filtering and wrapping.",
		Args: []textflow.ArgSpec{
			{Name: "pattern", Type: "string", Description: "CSS selector pattern"},
			{Name: "limit", Type: "number", Description: "Maximum number of elements to extract"},
			{Name: "remove", Type: "string", Description: "CSS selectors for elements to remove from each extracted element (comma-separated)"},
			{Name: "wrap", Type: "string", Description: "HTML tag name to wrap each extracted element"},
		},
		AllowedContentTypes: []string{"html"},
		Validators: []textflow.Validator{
			required("You must provide a CSS selector pattern.", "pattern"),
			validSelector("The pattern must be a valid CSS selector.", "pattern"),
			optional("The limit must be a non-negative number.", nonNegativeInt, "limit"),
			optional("If provided, the wrap tag must be a valid HTML tag name.", markup.ValidTagName, "wrap"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			doc, err := markup.Parse(w.Text)
			if err != nil {
				return nil, err
			}
			sel, err := doc.Find(inv.ArgOr("", "pattern"))
			if err != nil {
				return nil, err
			}

			parts := sel.Nodes
			if limit, ok, err := inv.Int("limit"); err != nil {
				return nil, err
			} else if ok && limit < len(parts) {
				parts = parts[:limit]
			}

			for _, r := range strings.Split(inv.ArgOr("", "remove"), ",") {
				if r = strings.TrimSpace(r); r == "" {
					continue
				}
				m, err := markup.Compile(r)
				if err != nil {
					return nil, err
				}
				for _, n := range parts {
					goquery.NewDocumentFromNode(n).FindMatcher(m).Remove()
				}
			}

			var out strings.Builder
			for _, n := range parts {
				if tag := inv.ArgOr("", "wrap"); tag != "" {
					if n, err = markup.WrapNode(n, tag); err != nil {
						return nil, err
					}
				}
				s, err := markup.RenderNode(n)
				if err != nil {
					return nil, err
				}
				out.WriteString(s)
			}
			return textflow.ReplaceText(out.String()), nil
		},
	}
}

func remove() *textflow.Command {
	return &textflow.Command{
		Name:        "remove",
		Title:       "Remove Element",
		Description: "Remove the elements matching a CSS selector from the working text.",
		Args: []textflow.ArgSpec{
			{Name: "selector", Type: "string", Description: "CSS selector for the element(s) to remove."},
		},
		AllowedContentTypes: []string{"plain", "html", "json", textflow.AnyContentType},
		Validators: []textflow.Validator{
			required("You must provide a CSS selector to remove elements.", "selector"),
			validSelector("The selector must be a valid CSS selector.", "selector"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			doc, err := markup.Parse(w.Text)
			if err != nil {
				return nil, err
			}
			if _, err := doc.Remove(inv.ArgOr("", "selector")); err != nil {
				return nil, err
			}
			out, err := doc.Render()
			if err != nil {
				return nil, err
			}
			return textflow.ReplaceText(out), nil
		},
	}
}

func absolutize() *textflow.Command {
	return &textflow.Command{
		Name:        "absolutize",
		Title:       "Absolutize URLs",
		Description: "Convert relative link and image URLs to absolute ones. The base defaults to the source URL of the working data.",
		Args: []textflow.ArgSpec{
			{Name: "url", Type: "string", Description: "The base URL. If not provided, the source URL is used."},
		},
		AllowedContentTypes: []string{"html"},
		Validators: []textflow.Validator{
			optional("If you provide a URL, it must be an absolute URL.", markup.IsAbsoluteURL, "url"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			base := inv.ArgOr("", "url")
			if base == "" {
				base = w.Source
			}
			if base == "" {
				return nil, fmt.Errorf("%w: url (no source URL to default to)", ErrMissingArgument)
			}
			out, err := markup.Absolutize(w.Text, base)
			if err != nil {
				return nil, err
			}
			return textflow.ReplaceText(out), nil
		},
	}
}

func (l *library) addCSS() *textflow.Command {
	return &textflow.Command{
		Name:        "add-css",
		Title:       "Add CSS",
		Description: "Append a <style> block, given inline or fetched from a URL.",
		Args: []textflow.ArgSpec{
			{Name: "css", Type: "string", Description: "The CSS to add."},
			{Name: "url", Type: "string", Description: "A URL to fetch CSS from."},
		},
		AllowedContentTypes: []string{"html"},
		Validators: []textflow.Validator{
			required("You must provide a 'css' argument or a 'url' argument with a URL to a CSS file.", "css", "url"),
		},
		Run: func(ctx context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			css := inv.ArgOr("", "css")
			if u := inv.ArgOr("", "url"); u != "" {
				body, err := fetch.Get(ctx, l.fetcher, u)
				if err != nil {
					return nil, fmt.Errorf("fetching CSS: %w", err)
				}
				css = body
			}
			if css == "" {
				return nil, ErrNoCSS
			}
			css = strings.ReplaceAll(css, "</", `<\/`)
			return textflow.ReplaceText(w.Text + "\n<style>" + css + "</style>"), nil
		},
	}
}
