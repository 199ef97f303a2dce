package commands

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/fetch"
	"github.com/alnah/textflow/internal/markup"
)

// templateSource resolves the template text: a URL wins over a selector,
// which wins over the inline template. A selected <script> element yields
// its raw text, any other element its inner HTML.
func (l *library) templateSource(ctx context.Context, inv *textflow.Invocation, urlAliases ...string) (string, error) {
	if u := inv.ArgOr("", urlAliases...); u != "" {
		body, err := fetch.Get(ctx, l.fetcher, u)
		if err != nil {
			return "", fmt.Errorf("fetching template: %w", err)
		}
		return body, nil
	}

	if selector := inv.ArgOr("", "templateSelector"); selector != "" {
		if l.templates == nil {
			return "", fmt.Errorf("%w: no template document configured for %q", ErrTemplateNotFound, selector)
		}
		sel, err := l.templates.Find(selector)
		if err != nil {
			return "", err
		}
		if sel.Length() == 0 {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, selector)
		}
		el := sel.First()
		if goquery.NodeName(el) == "script" {
			return el.Text(), nil
		}
		return el.Html()
	}

	return inv.ArgOr("", "template"), nil
}

func (l *library) templateJSON() *textflow.Command {
	return &textflow.Command{
		Name:        "template-json",
		Title:       "Template JSON",
		Description: "Apply a Liquid template to JSON data to generate HTML. The parsed working data is bound to 'data'.",
		Args: []textflow.ArgSpec{
			{Name: "template", Type: "string", Description: "Liquid template string"},
			{Name: "url", Type: "string", Description: "URL to fetch template from. Alias: templateUrl."},
			{Name: "templateUrl", Type: "string", Description: "Alias of url."},
			{Name: "templateSelector", Type: "string", Description: "CSS selector of the template in the template document"},
		},
		AllowedContentTypes: []string{"json"},
		Validators: []textflow.Validator{
			required("You must provide a template, a URL to fetch a template from, or a templateSelector.",
				"template", "url", "templateUrl", "templateSelector"),
			validSelector("The templateSelector must be a valid CSS selector.", "templateSelector"),
		},
		Run: func(ctx context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			src, err := l.templateSource(ctx, inv, "url", "templateUrl")
			if err != nil {
				return nil, err
			}
			if !gjson.Valid(w.Text) {
				return nil, ErrInvalidJSON
			}

			out, err := l.liquid.Render(src, map[string]any{"data": gjson.Parse(w.Text).Value()})
			if err != nil {
				return nil, err
			}
			return textflow.PatchText(out, "text/html"), nil
		},
	}
}

func (l *library) templateHTML() *textflow.Command {
	return &textflow.Command{
		Name:  "template-html",
		Title: "Template HTML",
		Description: "Apply a Liquid template to HTML data. The working text is bound to 'data' as a string and to " +
			"'html' as a node (innerHTML, outerHTML, text, tag, attr); the 'query' filter selects child nodes by CSS selector.",
		Args: []textflow.ArgSpec{
			{Name: "template", Type: "string", Description: "Liquid template string"},
			{Name: "url", Type: "string", Description: "URL to fetch template from"},
			{Name: "templateSelector", Type: "string", Description: "CSS selector of the template in the template document"},
		},
		AllowedContentTypes: []string{"html"},
		Validators: []textflow.Validator{
			required("You must provide a template, a URL to fetch a template from, or a templateSelector.",
				"template", "url", "templateSelector"),
			validSelector("The templateSelector must be a valid CSS selector.", "templateSelector"),
		},
		Run: func(ctx context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			src, err := l.templateSource(ctx, inv, "url")
			if err != nil {
				return nil, err
			}
			doc, err := markup.Parse(w.Text)
			if err != nil {
				return nil, err
			}

			out, err := l.liquid.Render(src, map[string]any{
				"data": w.Text,
				"html": markup.DocumentMap(doc),
			})
			if err != nil {
				return nil, err
			}
			return textflow.PatchText(out, "text/html"), nil
		},
	}
}
