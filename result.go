package textflow

// Result is the outcome of a command body. It is one of TextReplacement,
// FullReplacement or PartialPatch.
type Result interface {
	apply(w *WorkingData)
}

// TextReplacement replaces the document text only.
type TextReplacement struct {
	Text string
}

// FullReplacement replaces every document field. The abort flag stays
// sticky and the history stays with the engine.
type FullReplacement struct {
	Working *WorkingData
}

// PartialPatch overwrites the fields it carries. Container fields are
// shallow-merged.
type PartialPatch struct {
	Text        *string
	ContentType *string
	Source      *string
	Container   *Container
}

// ReplaceText returns a TextReplacement result.
func ReplaceText(text string) Result {
	return TextReplacement{Text: text}
}

// Replace returns a FullReplacement result.
func Replace(w *WorkingData) Result {
	return FullReplacement{Working: w}
}

// PatchText returns a patch setting the text and content type.
func PatchText(text, contentType string) Result {
	return PartialPatch{Text: &text, ContentType: &contentType}
}

// StringPtr returns a pointer to s, for building PartialPatch values.
func StringPtr(s string) *string {
	return &s
}

func (r TextReplacement) apply(w *WorkingData) {
	w.Text = r.Text
}

func (r FullReplacement) apply(w *WorkingData) {
	if r.Working == nil || r.Working == w {
		return
	}
	w.Text = r.Working.Text
	w.ContentType = r.Working.ContentType
	w.Source = r.Working.Source
	w.Extension = r.Working.Extension
	w.Container = r.Working.Container
	w.aborted = w.aborted || r.Working.aborted
}

func (r PartialPatch) apply(w *WorkingData) {
	if r.Text != nil {
		w.Text = *r.Text
	}
	if r.ContentType != nil {
		w.ContentType = *r.ContentType
	}
	if r.Source != nil {
		w.Source = *r.Source
	}
	if r.Container != nil {
		w.Container.merge(*r.Container)
	}
}

// merge applies a command result to w. A nil result changes nothing.
func merge(w *WorkingData, r Result) {
	if r == nil {
		return
	}
	r.apply(w)
}
