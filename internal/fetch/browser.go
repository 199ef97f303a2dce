package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/textflow/internal/process"
)

// DefaultBrowserTimeout bounds page loads.
const DefaultBrowserTimeout = 30 * time.Second

// BrowserFetcher loads pages in headless Chrome and returns the rendered DOM.
// Rod downloads Chromium on first use when no binary is configured.
type BrowserFetcher struct {
	mu        sync.Mutex
	bin       string
	noSandbox bool
	timeout   time.Duration

	launcher *launcher.Launcher
	browser  *rod.Browser
}

// Compile-time interface check.
var _ Fetcher = (*BrowserFetcher)(nil)

// BrowserOption configures a BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithBrowserBin uses a pre-installed browser binary.
// Containers usually need this together with WithNoSandbox.
func WithBrowserBin(path string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox.
func WithNoSandbox(on bool) BrowserOption {
	return func(b *BrowserFetcher) {
		b.noSandbox = on
	}
}

// WithPageTimeout sets the page load timeout. Zero keeps the default.
func WithPageTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// NewBrowserFetcher creates a fetcher. The browser starts on first Fetch.
func NewBrowserFetcher(opts ...BrowserOption) *BrowserFetcher {
	b := &BrowserFetcher{timeout: DefaultBrowserTimeout}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ensureBrowser lazily launches and connects to the browser.
func (b *BrowserFetcher) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	if b.noSandbox || b.bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.launcher = l
	b.browser = browser
	return nil
}

// Fetch navigates to req.URL and returns the serialized DOM once the page
// has loaded. Only GET is supported, and request headers are sent as extra
// HTTP headers.
func (b *BrowserFetcher) Fetch(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidRequest)
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("%w: browser fetch supports GET only, got %s", ErrInvalidRequest, m)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if len(req.Header) > 0 {
		var kv []string
		for k := range req.Header {
			kv = append(kv, k, req.Header.Get(k))
		}
		cleanup, err := page.SetExtraHeaders(kv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
		}
		defer cleanup()
	}

	if err := page.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, req.URL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, req.URL, err)
	}

	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, req.URL, err)
	}

	header := http.Header{}
	header.Set("Content-Type", "text/html; charset=utf-8")
	return &Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     header,
		Body:       content,
	}, nil
}

// Close shuts the browser down and kills its process group.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	if pid := b.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	b.launcher.Kill()
	b.browser = nil
	b.launcher = nil
	return err
}
