// Package fetch retrieves remote content for commands that read URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Sentinel errors for fetch operations.
var (
	ErrInvalidRequest = errors.New("invalid fetch request")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrHTTPStatus     = errors.New("unexpected HTTP status")
	ErrBodyTooLarge   = errors.New("response body too large")
	ErrBrowserConnect = errors.New("browser connection failed")
	ErrPageLoad       = errors.New("page load failed")
)

// Request describes one fetch.
type Request struct {
	Method string // default GET
	URL    string
	Header http.Header
	Body   string
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Status     string // e.g. "404 Not Found"
	Header     http.Header
	Body       string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header as sent.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// MediaType returns the Content-Type without parameters, lowercased.
func (r *Response) MediaType() string {
	mt, _, err := mime.ParseMediaType(r.ContentType())
	if err != nil {
		return strings.ToLower(strings.TrimSpace(r.ContentType()))
	}
	return mt
}

// Fetcher retrieves a URL.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req *Request) (*Response, error)

// Fetch calls f(ctx, req).
func (f FetcherFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Get fetches url with GET and returns the body. Non-2xx responses are
// reported as ErrHTTPStatus.
func Get(ctx context.Context, f Fetcher, url string) (string, error) {
	resp, err := f.Fetch(ctx, &Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: %s: %s", ErrHTTPStatus, url, resp.Status)
	}
	return resp.Body, nil
}
