package textflow

import (
	"strings"
	"time"

	"github.com/alnah/textflow/internal/sniff"
)

// contentTypeByExtension maps source file extensions to content types.
var contentTypeByExtension = map[string]string{
	"json":     "application/json",
	"csv":      "text/csv",
	"xml":      "application/xml",
	"markdown": "text/markdown",
	"md":       "text/markdown",
	"html":     "text/html",
	"htm":      "text/html",
	"txt":      "text/plain",
}

// Container holds presentation hints for whatever displays the result.
// Empty fields are unset.
type Container struct {
	Width     string `json:"width,omitempty"`
	Height    string `json:"height,omitempty"`
	MinHeight string `json:"minHeight,omitempty"`
}

// merge shallow-merges the set fields of patch into c.
func (c *Container) merge(patch Container) {
	if patch.Width != "" {
		c.Width = patch.Width
	}
	if patch.Height != "" {
		c.Height = patch.Height
	}
	if patch.MinHeight != "" {
		c.MinHeight = patch.MinHeight
	}
}

// HistoryEntry records one executed command.
type HistoryEntry struct {
	Command  Invocation    `json:"command"`
	Input    string        `json:"input"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
	Delta    int           `json:"delta"` // output minus input length, in runes
}

// History is the append-only execution trace of one run. Duration and Input
// are set once the run completes.
type History struct {
	Entries  []HistoryEntry `json:"entries"`
	Duration time.Duration  `json:"duration"`
	Input    string         `json:"input"`
}

// WorkingData is the document threaded through a pipeline run.
// It belongs to exactly one execution and must not be shared across
// concurrent runs.
type WorkingData struct {
	Text        string    // current payload
	ContentType string    // explicit content type; empty means infer
	Source      string    // origin locator, e.g. the URL the text came from
	Extension   string    // source file extension without the dot
	Container   Container // presentation hints
	History     History   // written by the engine only

	aborted bool
}

// NewWorkingData creates a document with empty history and no abort.
func NewWorkingData(text, contentType, source string) *WorkingData {
	return &WorkingData{
		Text:        text,
		ContentType: contentType,
		Source:      source,
	}
}

// Abort marks the document as aborted. The flag cannot be cleared.
func (w *WorkingData) Abort() {
	w.aborted = true
}

// Aborted reports whether a command aborted the run.
func (w *WorkingData) Aborted() bool {
	return w.aborted
}

// ResolvedContentType returns the explicit content type, else the type
// implied by Extension, else the sniffed MIME type of Text.
func (w *WorkingData) ResolvedContentType() string {
	if w.ContentType != "" {
		return w.ContentType
	}
	if ct, ok := contentTypeByExtension[strings.ToLower(strings.TrimPrefix(w.Extension, "."))]; ok {
		return ct
	}
	return sniff.DetectMIME(w.Text)
}

// IsType reports whether the resolved content type mentions kind,
// e.g. "json" matches both "json" and "application/json; charset=utf-8".
func (w *WorkingData) IsType(kind string) bool {
	return strings.Contains(strings.ToLower(w.ResolvedContentType()), strings.ToLower(kind))
}
