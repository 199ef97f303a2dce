package markup

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tagNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)

// ValidTagName reports whether name is a plain element name such as "div" or "h2".
func ValidTagName(name string) bool {
	return tagNamePattern.MatchString(name)
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// AppendText appends a text node to n.
func AppendText(n *html.Node, text string) {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// AddClass appends class names to the class attribute of n.
func AddClass(n *html.Node, classes ...string) {
	var names []string
	for _, c := range classes {
		names = append(names, strings.Fields(c)...)
	}
	if len(names) == 0 {
		return
	}
	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + strings.Join(names, " "))
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(names, " ")})
}

// Wrap parses content as the inner HTML of a new <tag> element and returns
// the element's outer HTML.
func Wrap(content, tag string, attrs ...html.Attribute) (string, error) {
	if !ValidTagName(tag) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	wrapper := NewElement(tag, attrs...)

	nodes, err := html.ParseFragment(strings.NewReader(content), wrapper)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	return RenderNode(wrapper)
}

// WrapNode moves n into a new <tag> element and returns the wrapper.
func WrapNode(n *html.Node, tag string) (*html.Node, error) {
	if !ValidTagName(tag) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	wrapper := NewElement(tag)
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	wrapper.AppendChild(n)
	return wrapper, nil
}
