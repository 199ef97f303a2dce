package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/assets"
)

// DebugReport renders an HTML table of a run's history: one row per
// executed command with input/output lengths in runes, then totals.
func DebugReport(h textflow.History) (string, error) {
	loader := assets.NewEmbeddedLoader()
	tpl, err := loader.LoadTemplate("debug-report")
	if err != nil {
		return "", fmt.Errorf("loading debug report template: %w", err)
	}
	css, err := loader.LoadStyle("debug-report")
	if err != nil {
		return "", fmt.Errorf("loading debug report style: %w", err)
	}

	entries := make([]map[string]any, 0, len(h.Entries))
	for _, e := range h.Entries {
		args := make([]string, 0, len(e.Command.Arguments))
		for _, a := range e.Command.Arguments {
			args = append(args, a.Key+"="+a.Value)
		}
		entries = append(entries, map[string]any{
			"name":      e.Command.Name,
			"arguments": strings.Join(args, " "),
			"input":     utf8.RuneCountInString(e.Input),
			"output":    utf8.RuneCountInString(e.Output),
			"delta":     e.Delta,
			"duration":  e.Duration.String(),
		})
	}

	output := utf8.RuneCountInString(h.Input)
	if n := len(h.Entries); n > 0 {
		output = utf8.RuneCountInString(h.Entries[n-1].Output)
	}
	input := utf8.RuneCountInString(h.Input)

	out, err := NewLiquid().Render(tpl, map[string]any{
		"entries":  entries,
		"input":    input,
		"output":   output,
		"delta":    output - input,
		"duration": h.Duration.String(),
	})
	if err != nil {
		return "", err
	}
	return out + "<style>\n" + css + "</style>", nil
}
