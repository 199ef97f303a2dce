package commands

import (
	"context"

	"github.com/alnah/textflow"
)

func (l *library) markdownCommand() *textflow.Command {
	return &textflow.Command{
		Name:                "markdown",
		Title:               "Markdown",
		Description:         "Convert Markdown text to an HTML fragment (GFM, footnotes, syntax highlighting, ==highlight==).",
		AllowedContentTypes: []string{"markdown", "plain"},
		Run: func(ctx context.Context, w *textflow.WorkingData, _ *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			out, err := l.markdown.ToHTML(ctx, w.Text)
			if err != nil {
				return nil, err
			}
			return textflow.PatchText(out, "text/html"), nil
		},
	}
}
