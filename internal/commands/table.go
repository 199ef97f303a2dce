package commands

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/csvrec"
	"github.com/alnah/textflow/internal/markup"
)

const columnArgPrefix = "col_"

var (
	nonClassChars  = regexp.MustCompile(`[^a-z0-9]+`)
	groupedNumber  = regexp.MustCompile(`^[+-]?\d{1,3}(?:,\d{3})*(?:\.\d+)?$`)
	plainNumber    = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
	leadingDigit   = regexp.MustCompile(`^[0-9]`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

type column struct {
	key     string
	title   string
	class   string
	numeric bool
}

func (l *library) makeTable() *textflow.Command {
	return &textflow.Command{
		Name:        "make-table",
		Title:       "Make Table",
		Description: "Convert a JSON array of objects or CSV data into an HTML table.",
		Args: []textflow.ArgSpec{
			{Name: columnArgPrefix + textflow.Wildcard, Type: "string", Description: "Column titles in display order, e.g. col_name=Full Name"},
			{Name: "clickUrl", Type: "string", Description: "Liquid URL template for clickable rows; the row is bound to 'row'"},
		},
		AllowedContentTypes: []string{"json", "csv"},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			rows, err := tableRows(w)
			if err != nil {
				return nil, err
			}

			table, err := l.buildTable(rows, tableColumns(inv, rows), inv.ArgOr("", "clickUrl"))
			if err != nil {
				return nil, err
			}
			out, err := markup.RenderNode(table)
			if err != nil {
				return nil, err
			}
			return textflow.PatchText(out+"<style>\n"+l.tableCSS+"</style>", "text/html"), nil
		},
	}
}

// tableRows reads the working text as JSON or CSV records. Other content
// types produce no rows.
func tableRows(w *textflow.WorkingData) ([]csvrec.Record, error) {
	switch {
	case w.IsType("json"):
		if !gjson.Valid(w.Text) {
			return nil, ErrInvalidJSON
		}
		doc := gjson.Parse(w.Text)
		if !doc.IsArray() {
			return nil, fmt.Errorf("%w: make-table needs a JSON array of objects", ErrUnsupportedInput)
		}

		var rows []csvrec.Record
		var bad error
		doc.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				bad = fmt.Errorf("%w: make-table needs a JSON array of objects", ErrUnsupportedInput)
				return false
			}
			var rec csvrec.Record
			item.ForEach(func(k, v gjson.Result) bool {
				rec = append(rec, csvrec.Field{Key: k.String(), Value: jsonCell(v)})
				return true
			})
			rows = append(rows, rec)
			return true
		})
		return rows, bad

	case w.IsType("csv"):
		return csvrec.Parse(w.Text, csvrec.Options{}), nil
	}
	return nil, nil
}

func jsonCell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.JSON:
		return v.Raw
	}
	return v.String()
}

// tableColumns returns the col_* arguments in authored order, or the keys
// of the first row when there are none.
func tableColumns(inv *textflow.Invocation, rows []csvrec.Record) []column {
	var cols []column
	for _, a := range inv.Prefixed(columnArgPrefix) {
		key := strings.TrimSpace(a.Key)
		cols = append(cols, column{key: key, title: a.Value})
	}
	if len(cols) == 0 && len(rows) > 0 {
		for _, key := range rows[0].Keys() {
			cols = append(cols, column{key: key, title: key})
		}
	}

	for i := range cols {
		cols[i].class = "col-" + className(cols[i].key)
		cols[i].numeric = len(rows) > 0
		for _, r := range rows {
			v, ok := r.Get(cols[i].key)
			if !ok || !isNumericLike(v) {
				cols[i].numeric = false
				break
			}
		}
	}
	return cols
}

func (l *library) buildTable(rows []csvrec.Record, cols []column, clickURL string) (*html.Node, error) {
	table := markup.NewElement("table")
	thead := markup.NewElement("thead")
	tbody := markup.NewElement("tbody")
	table.AppendChild(thead)
	table.AppendChild(tbody)

	head := markup.NewElement("tr")
	thead.AppendChild(head)
	for _, c := range cols {
		head.AppendChild(cell("th", c, c.title))
	}

	for _, r := range rows {
		tr := markup.NewElement("tr")
		if clickURL != "" {
			target, err := l.liquid.Render(clickURL, map[string]any{"row": rowBinding(r)})
			if err != nil {
				return nil, err
			}
			tr.Attr = append(tr.Attr,
				html.Attribute{Key: "onclick", Val: "window.open('" + target + "', '_blank')"},
				html.Attribute{Key: "data-nav", Val: "true"},
			)
		}
		for _, c := range cols {
			v, _ := r.Get(c.key)
			tr.AppendChild(cell("td", c, v))
		}
		tbody.AppendChild(tr)
	}
	return table, nil
}

func cell(tag string, c column, text string) *html.Node {
	n := markup.NewElement(tag)
	markup.AddClass(n, c.class)
	if c.numeric {
		markup.AddClass(n, "numeric")
	}
	markup.AppendText(n, text)
	return n
}

func rowBinding(r csvrec.Record) map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

// className turns a column key into a CSS class fragment.
func className(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	s = nonClassChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	if leadingDigit.MatchString(s) {
		s = "c-" + s
	}
	if s == "" {
		return "col"
	}
	return s
}

// isNumericLike accepts plain or comma-grouped numbers with an optional
// sign, decimals and dollar signs anywhere.
func isNumericLike(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return false
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if !groupedNumber.MatchString(s) && !plainNumber.MatchString(s) {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}
