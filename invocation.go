package textflow

import (
	"strconv"
	"strings"
)

// Argument is one key/value pair of an invocation.
type Argument struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Invocation is one entry of a caller-supplied command list.
// The engine never modifies it.
type Invocation struct {
	Name      string     `json:"name"`
	Arguments []Argument `json:"arguments"`
}

// NewInvocation builds an invocation from alternating key/value strings.
// A trailing key without a value is dropped.
func NewInvocation(name string, kv ...string) Invocation {
	inv := Invocation{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		inv.Arguments = append(inv.Arguments, Argument{Key: kv[i], Value: kv[i+1]})
	}
	return inv
}

// Arg returns the value of the first alias present among the arguments.
// The boolean distinguishes an absent key from one with an empty value.
func (inv *Invocation) Arg(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		for _, a := range inv.Arguments {
			if a.Key == alias {
				return a.Value, true
			}
		}
	}
	return "", false
}

// ArgOr returns the first present alias, or def when none is present.
func (inv *Invocation) ArgOr(def string, aliases ...string) string {
	if v, ok := inv.Arg(aliases...); ok {
		return v
	}
	return def
}

// HasValue reports whether any alias is present with a non-empty value.
func (inv *Invocation) HasValue(aliases ...string) bool {
	v, ok := inv.Arg(aliases...)
	return ok && v != ""
}

// Bool interprets the first present alias as a boolean. Absent, empty,
// "false", "0", "no" and "off" are false; any other value is true.
func (inv *Invocation) Bool(aliases ...string) bool {
	v, ok := inv.Arg(aliases...)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no", "off":
		return false
	}
	return true
}

// Int parses the first present alias as an integer.
// It reports false when the alias is absent or empty.
func (inv *Invocation) Int(aliases ...string) (int, bool, error) {
	v, ok := inv.Arg(aliases...)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// Prefixed returns every argument whose key starts with prefix, in authored
// order, with the prefix stripped from the key.
func (inv *Invocation) Prefixed(prefix string) []Argument {
	var out []Argument
	for _, a := range inv.Arguments {
		if strings.HasPrefix(a.Key, prefix) {
			out = append(out, Argument{Key: strings.TrimPrefix(a.Key, prefix), Value: a.Value})
		}
	}
	return out
}

// clone returns a copy that shares nothing with inv.
func (inv Invocation) clone() Invocation {
	out := Invocation{Name: inv.Name}
	if inv.Arguments != nil {
		out.Arguments = append([]Argument(nil), inv.Arguments...)
	}
	return out
}
