package markup

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NodeMap describes the first element of s as plain values for templates:
// innerHTML, outerHTML, text, tag and attr (name to value).
func NodeMap(s *goquery.Selection) map[string]any {
	inner, _ := s.Html()
	outer, _ := goquery.OuterHtml(s)

	attrs := make(map[string]any)
	tag := ""
	if n := s.Get(0); n != nil {
		if n.Type == html.ElementNode {
			tag = n.Data
		}
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
	}

	return map[string]any{
		"innerHTML": inner,
		"outerHTML": outer,
		"text":      s.Text(),
		"tag":       tag,
		"attr":      attrs,
	}
}

// DocumentMap describes a parsed document. For full documents the
// innerHTML and outerHTML fields are taken from the <html> element.
func DocumentMap(d *Document) map[string]any {
	root := d.Selection()
	if !d.fragment {
		if el := root.Find("html"); el.Length() > 0 {
			return NodeMap(el.First())
		}
	}

	inner, _ := d.Render()
	return map[string]any{
		"innerHTML": inner,
		"outerHTML": inner,
		"text":      root.Text(),
		"tag":       "",
		"attr":      map[string]any{},
	}
}

// Query returns a NodeMap for every element of content matching selector.
func Query(content, selector string) ([]map[string]any, error) {
	doc, err := Parse(content)
	if err != nil {
		return nil, err
	}
	sel, err := doc.Find(selector)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, sel.Length())
	for i := range sel.Nodes {
		out = append(out, NodeMap(sel.Eq(i)))
	}
	return out, nil
}
