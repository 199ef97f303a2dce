package commands

import (
	"context"
	"net/http"
	"strings"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/fetch"
)

const headerArgPrefix = "header_"

func (l *library) http() *textflow.Command {
	return &textflow.Command{
		Name:        "http",
		Title:       "HTTP Request",
		Description: "Fetch content from a URL. A non-2xx response aborts the pipeline.",
		Args: []textflow.ArgSpec{
			{Name: "url", Type: "string", Description: "URL to fetch content from"},
			{Name: "method", Type: "string", Description: "HTTP method to use (default: GET)"},
			{Name: headerArgPrefix + textflow.Wildcard, Type: "object", Description: "Headers to include in the request, e.g. header_Accept"},
			{Name: "body", Type: "string", Description: "Request body"},
			{Name: "render", Type: "boolean", Description: "Load the page in a headless browser and return the rendered DOM"},
		},
		AllowedContentTypes: []string{textflow.AnyContentType},
		Validators: []textflow.Validator{
			required("You must provide a URL to fetch.", "url"),
		},
		Run: func(ctx context.Context, w *textflow.WorkingData, inv *textflow.Invocation, p *textflow.Pipeline) (textflow.Result, error) {
			req := &fetch.Request{
				Method: strings.ToUpper(inv.ArgOr(http.MethodGet, "method")),
				URL:    inv.ArgOr("", "url"),
				Header: http.Header{},
				Body:   inv.ArgOr("", "body"),
			}
			for _, h := range inv.Prefixed(headerArgPrefix) {
				req.Header.Add(h.Key, h.Value)
			}

			f := l.fetcher
			if inv.Bool("render") {
				if l.browser == nil {
					return nil, ErrBrowserDisabled
				}
				f = l.browser
			}

			resp, err := f.Fetch(ctx, req)
			if err != nil {
				return nil, err
			}
			if !resp.OK() {
				p.Log("HTTP failed", "url", req.URL, "status", resp.Status)
				w.Abort()
				return nil, nil
			}

			ct := resp.ContentType()
			return textflow.PartialPatch{
				Text:        &resp.Body,
				ContentType: &ct,
				Source:      &req.URL,
			}, nil
		},
	}
}
