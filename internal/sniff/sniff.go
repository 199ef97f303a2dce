// Package sniff classifies untyped text as JSON, HTML, CSV or plain text.
package sniff

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/tidwall/gjson"
)

// Kind is the detected class of a text payload.
type Kind string

// Detected kinds, in the order they are tested.
const (
	JSON  Kind = "json"
	HTML  Kind = "html"
	CSV   Kind = "csv"
	Plain Kind = "plain"
)

// MIME types reported for each kind.
const (
	MIMEJSON  = "application/json"
	MIMEHTML  = "text/html"
	MIMECSV   = "text/csv"
	MIMEPlain = "text/plain"
)

// MIME returns the media type for k.
func (k Kind) MIME() string {
	switch k {
	case JSON:
		return MIMEJSON
	case HTML:
		return MIMEHTML
	case CSV:
		return MIMECSV
	default:
		return MIMEPlain
	}
}

// CSV heuristic limits.
const (
	csvSampleLines  = 50
	csvMinLines     = 2
	csvMinColumns   = 2
	csvModeFraction = 0.6
)

// pairedTagTimeout bounds the backtracking paired-tag match.
const pairedTagTimeout = 250 * time.Millisecond

var (
	doctypePattern    = regexp.MustCompile(`(?i)^<!doctype\s+html>`)
	structuralPattern = regexp.MustCompile(`(?i)<(html|head|body|script|style|div|span|p|a|ul|ol|li|table|tr|td|section|article|header|footer)\b`)
	lineSplit         = regexp.MustCompile(`\r?\n`)

	// RE2 has no backreferences, so the generic <tag>...</tag> check uses regexp2.
	pairedTagPattern = func() *regexp2.Regexp {
		re := regexp2.MustCompile(`<([A-Za-z][\w:-]*)(\s[^>]*)?>[\s\S]*</\1>`, regexp2.Multiline)
		re.MatchTimeout = pairedTagTimeout
		return re
	}()
)

// Detect classifies input. JSON is tested before HTML and HTML before CSV;
// only objects and arrays count as JSON.
func Detect(input string) Kind {
	t := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "\uFEFF"))

	if (strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")) && gjson.Valid(t) {
		return JSON
	}
	if looksLikeHTML(t) {
		return HTML
	}
	if looksLikeCSV(t) {
		return CSV
	}
	return Plain
}

// DetectMIME is Detect(input).MIME().
func DetectMIME(input string) string {
	return Detect(input).MIME()
}

func looksLikeHTML(s string) bool {
	if s == "" || s[0] != '<' {
		return false
	}
	if doctypePattern.MatchString(s) || structuralPattern.MatchString(s) {
		return true
	}
	ok, err := pairedTagPattern.MatchString(s)
	return err == nil && ok
}

func looksLikeCSV(s string) bool {
	if s == "" {
		return false
	}

	var lines []string
	for _, l := range lineSplit.Split(s, -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < csvMinLines {
		return false
	}
	sample := lines
	if len(sample) > csvSampleLines {
		sample = sample[:csvSampleLines]
	}

	hasComma := false
	for _, l := range sample {
		if strings.Contains(l, ",") {
			hasComma = true
			break
		}
	}
	if !hasComma {
		return false
	}

	freq := make(map[int]int)
	for _, l := range sample {
		freq[countFields(l)]++
	}

	// Ties go to the smaller column count.
	cols := make([]int, 0, len(freq))
	for c := range freq {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	modeCols, modeCount := 0, 0
	for _, c := range cols {
		if freq[c] > modeCount {
			modeCols, modeCount = c, freq[c]
		}
	}

	need := int(math.Ceil(float64(len(sample)) * csvModeFraction))
	if need < csvMinLines {
		need = csvMinLines
	}
	return modeCols >= csvMinColumns && modeCount >= need
}

// countFields counts comma-separated fields in one line, honouring quotes
// and doubled-quote escapes.
func countFields(line string) int {
	n := 1
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				i++
				continue
			}
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				n++
			}
		}
	}
	return n
}
