// Package csvrec parses delimited text into ordered header-keyed records.
//
// The scanner is a character-level state machine so quoted fields may carry
// delimiters and newlines.
package csvrec

import (
	"strconv"
	"strings"
)

const bom = '\uFEFF'

// Options configures Parse. The zero value uses a comma delimiter, keeps
// fields untrimmed and skips rows whose fields are all empty.
type Options struct {
	Delimiter     rune // default ','
	Trim          bool // trim whitespace around each field
	KeepEmptyRows bool // keep rows whose fields are all empty
}

// Field is one key/value cell of a record.
type Field struct {
	Key   string
	Value string
}

// Record is one data row, keyed by header in column order.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Keys returns the record keys in column order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Map returns the record as an unordered map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

// set overwrites an existing key in place or appends a new one.
func (r Record) set(key, value string) Record {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Key: key, Value: value})
}

// Parse reads input and returns one record per data row. The first row is
// the header. Columns past the header get synthesized names (__col<N>, 1-based)
// and missing trailing cells are empty strings.
func Parse(input string, opts Options) []Record {
	rows := scan(input, opts)
	if len(rows) == 0 {
		return nil
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		n := max(len(headers), len(row))
		rec := make(Record, 0, n)
		for c := 0; c < n; c++ {
			key := "__col" + strconv.Itoa(c+1)
			if c < len(headers) {
				key = headers[c]
			}
			value := ""
			if c < len(row) {
				value = row[c]
			}
			rec = rec.set(key, value)
		}
		records = append(records, rec)
	}
	return records
}

// Rows returns the raw field rows, header included.
func Rows(input string, opts Options) [][]string {
	return scan(input, opts)
}

func scan(input string, opts Options) [][]string {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	input = strings.TrimPrefix(input, string(bom))
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	pushField := func() {
		v := field.String()
		if opts.Trim {
			v = strings.TrimSpace(v)
		}
		row = append(row, v)
		field.Reset()
	}
	pushRow := func() {
		if opts.KeepEmptyRows || !allEmpty(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteRune(ch)
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case delim:
			pushField()
		case '\n':
			pushField()
			pushRow()
		default:
			field.WriteRune(ch)
		}
	}

	// The trailing field and row are flushed even without a final newline.
	pushField()
	pushRow()

	return rows
}

func allEmpty(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
