package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/textflow"
)

func TestMarkdown_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "heading with id",
			input:        "# Hello World",
			wantContains: []string{`<h1 id="hello-world">Hello World</h1>`},
			wantExcludes: []string{"<html", "<body"},
		},
		{
			name:         "highlight",
			input:        "a ==marked== word",
			wantContains: []string{"<mark>marked</mark>"},
		},
		{
			name:         "gfm table",
			input:        "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:         "strikethrough",
			input:        "~~gone~~",
			wantContains: []string{"<del>gone</del>"},
		},
		{
			name:         "raw html stays escaped",
			input:        "<script>alert(1)</script>",
			wantExcludes: []string{"<script>"},
		},
		{
			name:         "fenced code highlighted with classes",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
		},
	}

	md := NewMarkdown()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := md.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("ToHTML(%q) = %q, must not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

func TestMarkdown_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMarkdown().ToHTML(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	got := preprocess("a\r\n\r\n\r\n\r\nb\rc")
	if want := "a\n\nb\nc"; got != want {
		t.Errorf("preprocess() = %q, want %q", got, want)
	}
}

func TestLiquid_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		bindings map[string]any
		want     string
		wantErr  bool
	}{
		{
			name:     "variable",
			src:      "Hi {{ data.name }}",
			bindings: map[string]any{"data": map[string]any{"name": "Al"}},
			want:     "Hi Al",
		},
		{
			name:     "commas int",
			src:      "{{ n | commas }}",
			bindings: map[string]any{"n": 1234567},
			want:     "1,234,567",
		},
		{
			name:     "commas float",
			src:      "{{ n | commas }}",
			bindings: map[string]any{"n": 1234.5},
			want:     "1,234.50",
		},
		{
			name:     "query over html string",
			src:      `{% assign items = page | query: "li" %}{% for i in items %}[{{ i.text }}]{% endfor %}`,
			bindings: map[string]any{"page": "<ul><li>a</li><li>b</li></ul>"},
			want:     "[a][b]",
		},
		{
			name:    "parse error",
			src:     "{% if %}",
			wantErr: true,
		},
	}

	l := NewLiquid()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := l.Render(tt.src, tt.bindings)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Render() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrTemplate) {
				t.Errorf("Render() error = %v, want ErrTemplate", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDebugReport(t *testing.T) {
	t.Parallel()

	h := textflow.History{
		Input:    strings.Repeat("a", 1000),
		Duration: 3 * time.Millisecond,
		Entries: []textflow.HistoryEntry{
			{
				Command:  textflow.NewInvocation("append", "text", "<b>"),
				Input:    strings.Repeat("a", 1000),
				Output:   strings.Repeat("a", 1000) + "<b>",
				Delta:    3,
				Duration: time.Millisecond,
			},
		},
	}

	got, err := DebugReport(h)
	if err != nil {
		t.Fatalf("DebugReport() error = %v", err)
	}
	for _, want := range []string{"<table", "append", "text=&lt;b&gt;", "1,000", "1,003", "3ms"} {
		if !strings.Contains(got, want) {
			t.Errorf("DebugReport() missing %q in %q", want, got)
		}
	}
}
