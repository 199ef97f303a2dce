package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scope selects which part of a matched element is extracted.
type Scope struct {
	kind string // "inner", "outer", "text" or "attr"
	attr string
}

// Standard scopes.
var (
	ScopeOuter = Scope{kind: "outer"}
	ScopeInner = Scope{kind: "inner"}
	ScopeText  = Scope{kind: "text"}
)

// ParseScope parses "inner", "outer", "text" or "@name". Empty means outer.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "outer":
		return ScopeOuter, nil
	case "inner":
		return ScopeInner, nil
	case "text":
		return ScopeText, nil
	}
	if name, ok := strings.CutPrefix(s, "@"); ok && name != "" {
		return Scope{kind: "attr", attr: name}, nil
	}
	return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

// Of returns the scoped content of the first element in s.
// A missing attribute yields the empty string.
func (sc Scope) Of(s *goquery.Selection) (string, error) {
	switch sc.kind {
	case "inner":
		return s.Html()
	case "text":
		return s.Text(), nil
	case "attr":
		return s.AttrOr(sc.attr, ""), nil
	default:
		return goquery.OuterHtml(s)
	}
}

// Extract returns the scoped content of each element matched by selector.
func Extract(content, selector string, scope Scope) ([]string, error) {
	doc, err := Parse(content)
	if err != nil {
		return nil, err
	}
	sel, err := doc.Find(selector)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, sel.Length())
	for i := range sel.Nodes {
		v, err := scope.Of(sel.Eq(i))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
		out = append(out, v)
	}
	return out, nil
}
