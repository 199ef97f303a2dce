package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/osteele/liquid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alnah/textflow/internal/markup"
)

// ErrTemplate indicates a Liquid parse or render failure.
var ErrTemplate = errors.New("template failed")

// Liquid renders Liquid templates. Besides the standard filters it offers
//
//	commas  - formats a number with thousands separators
//	query   - selects elements from an HTML string or node map by CSS selector
type Liquid struct {
	engine *liquid.Engine
}

// NewLiquid creates a Liquid renderer with the textflow filters registered.
func NewLiquid() *Liquid {
	e := liquid.NewEngine()
	e.RegisterFilter("commas", commas)
	e.RegisterFilter("query", query)
	return &Liquid{engine: e}
}

// Render parses and renders src with bindings.
func (l *Liquid) Render(src string, bindings map[string]any) (string, error) {
	out, err := l.engine.ParseAndRenderString(src, bindings)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return out, nil
}

var printer = message.NewPrinter(language.English)

func commas(v any) string {
	switch n := v.(type) {
	case int:
		return printer.Sprintf("%d", n)
	case int64:
		return printer.Sprintf("%d", n)
	case float64:
		if n == math.Trunc(n) {
			return printer.Sprintf("%d", int64(n))
		}
		return printer.Sprintf("%.2f", n)
	}
	return fmt.Sprint(v)
}

// query accepts a node map produced by markup.NodeMap or DocumentMap, or a
// raw HTML string.
func query(v any, selector string) ([]map[string]any, error) {
	var content string
	switch x := v.(type) {
	case string:
		content = x
	case map[string]any:
		content, _ = x["outerHTML"].(string)
	default:
		return nil, nil
	}
	return markup.Query(content, selector)
}
