// Package markup parses, queries and serializes HTML for the text commands.
//
// Documents keep their input shape: a full document (starting with a
// doctype or <html>) renders back as a full document, anything else is
// treated as a body fragment and renders without an <html><body> wrapper.
package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for HTML operations.
var (
	ErrParse           = errors.New("HTML parse failed")
	ErrRender          = errors.New("HTML render failed")
	ErrInvalidSelector = errors.New("invalid CSS selector")
	ErrInvalidScope    = errors.New("invalid extraction scope")
	ErrInvalidTag      = errors.New("invalid tag name")
)

// Document is a parsed HTML document or fragment.
type Document struct {
	root     *html.Node
	fragment bool
}

// Parse parses content as a full document or a body fragment.
func Parse(content string) (*Document, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		root, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return &Document{root: root}, nil
	}

	nodes, err := ParseFragment(content)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{root: root, fragment: true}, nil
}

// ParseFragment parses content in a <body> context.
func ParseFragment(content string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nodes, nil
}

// IsFragment reports whether the document was parsed as a fragment.
func (d *Document) IsFragment() bool {
	return d.fragment
}

// Selection returns the document root as a goquery selection.
func (d *Document) Selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(d.root).Selection
}

// Find returns the elements matching selector.
func (d *Document) Find(selector string) (*goquery.Selection, error) {
	m, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return d.Selection().FindMatcher(m), nil
}

// Remove detaches every element matching selector and returns the count.
func (d *Document) Remove(selector string) (int, error) {
	sel, err := d.Find(selector)
	if err != nil {
		return 0, err
	}
	n := sel.Length()
	sel.Remove()
	return n, nil
}

// Render serializes the document. Fragments render their top-level nodes only.
func (d *Document) Render() (string, error) {
	if !d.fragment {
		return RenderNode(d.root)
	}

	var buf strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}
	}
	return buf.String(), nil
}

// RenderNode serializes n including its own tag.
func RenderNode(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// Compile parses a CSS selector group such as "h1, .title".
func Compile(selector string) (cascadia.Selector, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
	}
	return sel, nil
}

// ValidSelector reports whether selector compiles.
func ValidSelector(selector string) bool {
	_, err := Compile(selector)
	return err == nil
}
