package markup

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidBase indicates a base URL that is not absolute.
var ErrInvalidBase = errors.New("base URL must be absolute")

// IsAbsoluteURL reports whether s parses as a URL with a scheme.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.IsAbs()
}

// Absolutize resolves a[href] and img[src] values against base.
//
// Values that do not parse as URLs are left unchanged.
func Absolutize(content, base string) (string, error) {
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBase, base)
	}

	doc, err := Parse(content)
	if err != nil {
		return "", err
	}

	root := doc.Selection()
	rewrite := func(selector, attr string) {
		root.Find(selector).Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(attr)
			s.SetAttr(attr, resolve(baseURL, v))
		})
	}
	rewrite("a[href]", "href")
	rewrite("img[src]", "src")

	return doc.Render()
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
