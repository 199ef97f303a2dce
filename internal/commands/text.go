package commands

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/markup"
)

func noOp() *textflow.Command {
	return &textflow.Command{
		Name:                "no-op",
		Title:               "No Operation",
		Description:         "Does nothing and leaves the working data unchanged.",
		AllowedContentTypes: []string{textflow.AnyContentType},
		Passthrough:         true,
		Run: func(context.Context, *textflow.WorkingData, *textflow.Invocation, *textflow.Pipeline) (textflow.Result, error) {
			return nil, nil
		},
	}
}

func setDebug() *textflow.Command {
	return &textflow.Command{
		Name:                textflow.SetDebugCommand,
		Title:               "Set Debug",
		Description:         "Enable debug logging for the pipeline. Does not affect the working text.",
		AllowedContentTypes: []string{textflow.AnyContentType},
		Passthrough:         true,
		Run: func(_ context.Context, _ *textflow.WorkingData, _ *textflow.Invocation, p *textflow.Pipeline) (textflow.Result, error) {
			p.SetDebug(true)
			return nil, nil
		},
	}
}

func setType() *textflow.Command {
	return &textflow.Command{
		Name:        "set-type",
		Title:       "Set Type",
		Description: "Force the content type of the working data.",
		Args: []textflow.ArgSpec{
			{Name: "type", Type: "string", Description: "Content type to set (e.g. 'json', 'html', 'plain')"},
		},
		AllowedContentTypes: []string{textflow.AnyContentType},
		Passthrough:         true,
		Validators: []textflow.Validator{
			required("You must provide a valid content type (json, html, plain).", "type"),
		},
		Run: func(_ context.Context, _ *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			ct := strings.ToLower(inv.ArgOr("", "type"))
			return textflow.PartialPatch{ContentType: &ct}, nil
		},
	}
}

func setContainerSize() *textflow.Command {
	return &textflow.Command{
		Name:        "set-container-size",
		Title:       "Set Container Size",
		Description: "Set the width, height and/or minHeight of the container that holds the content.",
		Args: []textflow.ArgSpec{
			{Name: "width", Type: "number", Description: "The width of the container."},
			{Name: "height", Type: "number", Description: "The height of the container."},
			{Name: "minHeight", Type: "number", Description: "The minimum height of the container."},
		},
		Passthrough: true,
		Validators: []textflow.Validator{{
			Test: func(inv *textflow.Invocation) bool {
				return inv.HasValue("width") || inv.HasValue("height") || inv.HasValue("minHeight")
			},
			Message: "You must provide at least one dimension (width, height, minHeight) for the container.",
		}},
		Run: func(_ context.Context, _ *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			return textflow.PartialPatch{Container: &textflow.Container{
				Width:     inv.ArgOr("", "width"),
				Height:    inv.ArgOr("", "height"),
				MinHeight: inv.ArgOr("", "minHeight"),
			}}, nil
		},
	}
}

func appendText() *textflow.Command {
	return &textflow.Command{
		Name:                "append",
		Title:               "Append Text",
		Description:         "Add text to the end of the working text.",
		Args:                []textflow.ArgSpec{{Name: "text", Type: "string", Description: "Text to append."}},
		AllowedContentTypes: []string{"plain", "html", "json", textflow.AnyContentType},
		Validators:          []textflow.Validator{required("You must provide text to append.", "text")},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			return textflow.ReplaceText(w.Text + inv.ArgOr("", "text")), nil
		},
	}
}

func prependText() *textflow.Command {
	return &textflow.Command{
		Name:                "prepend",
		Title:               "Prepend Text",
		Description:         "Add text to the beginning of the working text.",
		Args:                []textflow.ArgSpec{{Name: "text", Type: "string", Description: "Text to prepend."}},
		AllowedContentTypes: []string{"plain", "html", "json", textflow.AnyContentType},
		Validators:          []textflow.Validator{required("You must provide text to prepend.", "text")},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			return textflow.ReplaceText(inv.ArgOr("", "text") + w.Text), nil
		},
	}
}

func newLines() *textflow.Command {
	return &textflow.Command{
		Name:                "new-lines",
		Title:               "New Lines",
		Description:         "Trim each line, drop blank ones and join the rest with <br> tags.",
		AllowedContentTypes: []string{"plain", textflow.AnyContentType},
		Run: func(_ context.Context, w *textflow.WorkingData, _ *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			var kept []string
			for _, line := range strings.Split(w.Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					kept = append(kept, line)
				}
			}
			return textflow.ReplaceText(strings.Join(kept, "<br>")), nil
		},
	}
}

func wrapLines() *textflow.Command {
	return &textflow.Command{
		Name:        "wrap-lines",
		Title:       "Wrap Lines",
		Description: "Wrap each line of text in an HTML tag with an optional class.",
		Args: []textflow.ArgSpec{
			{Name: "tag", Type: "string", Description: "The HTML tag to wrap each line in (default: div)."},
			{Name: "class", Type: "string", Description: "An optional class for the wrapping tag."},
		},
		AllowedContentTypes: []string{"text", "html"},
		Validators: []textflow.Validator{
			optional("If provided, the tag name must be a valid HTML tag name.", markup.ValidTagName, "tag"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			tag := inv.ArgOr("", "tag")
			if tag == "" {
				tag = "div"
			}
			open := "<" + tag + ">"
			if class, ok := inv.Arg("class"); ok {
				open = fmt.Sprintf(`<%s class="%s">`, tag, html.EscapeString(class))
			}

			lines := strings.Split(w.Text, "\n")
			for i, l := range lines {
				lines[i] = open + l + "</" + tag + ">"
			}
			return textflow.ReplaceText(strings.Join(lines, "\n")), nil
		},
	}
}

func removeLines() *textflow.Command {
	return &textflow.Command{
		Name:        "remove-lines",
		Title:       "Remove Lines",
		Description: "Remove lines matching a regular expression, then a number of lines from the start or end.",
		Args: []textflow.ArgSpec{
			{Name: "lines", Type: "number", Description: "The number of lines to remove."},
			{Name: "from", Type: "string", Description: "Where to remove lines from: start (default) or end."},
			{Name: "regex", Type: "string", Description: "A regular expression matching lines to remove."},
		},
		AllowedContentTypes: []string{"html"},
		Validators: []textflow.Validator{
			required("You must provide either a 'lines' argument or a 'regex' argument.", "lines", "regex"),
			optional("The number of lines to remove must be a non-negative number.", nonNegativeNumber, "lines"),
			optional("The 'from' argument must be 'start' or 'end'.", func(v string) bool {
				return v == "start" || v == "end"
			}, "from"),
			optional("The 'regex' argument must be a valid regular expression.", func(v string) bool {
				_, err := regexp.Compile(v)
				return err == nil
			}, "regex"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			lines := strings.Split(w.Text, "\n")

			if expr := inv.ArgOr("", "regex"); expr != "" {
				re, err := regexp.Compile(expr)
				if err != nil {
					return nil, err
				}
				kept := lines[:0]
				for _, l := range lines {
					if !re.MatchString(l) {
						kept = append(kept, l)
					}
				}
				lines = kept
			}

			n, err := lineCount(inv.ArgOr("", "lines"), len(lines))
			if err != nil {
				return nil, err
			}

			if inv.ArgOr("start", "from") == "end" {
				lines = lines[:len(lines)-n]
			} else {
				lines = lines[n:]
			}
			return textflow.ReplaceText(strings.Join(lines, "\n")), nil
		},
	}
}

// lineCount parses a line count, truncating fractions and capping it at max.
// An empty value is zero.
func lineCount(v string, max int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid line count %q: %w", v, err)
	}
	if f >= float64(max) {
		return max, nil
	}
	return int(f), nil
}
