package textflow

import (
	"context"
	"fmt"
	"strings"
)

// Wildcard marks an ArgSpec name that accepts any key sharing its prefix.
const Wildcard = "*"

// AnyContentType is the catch-all entry for AllowedContentTypes.
const AnyContentType = "*"

// Func is the body of a command. It may block on ctx-aware I/O; the engine
// waits for it before running the next command. A nil Result leaves the
// document unchanged.
type Func func(ctx context.Context, w *WorkingData, inv *Invocation, p *Pipeline) (Result, error)

// ArgSpec declares an argument a command recognizes.
type ArgSpec struct {
	Name        string `json:"name"` // may end in Wildcard, e.g. "header_*"
	Type        string `json:"type"` // "string", "number", "boolean", "object"
	Description string `json:"description"`
}

// Matches reports whether key is accepted by a.
func (a ArgSpec) Matches(key string) bool {
	if prefix, ok := strings.CutSuffix(a.Name, Wildcard); ok {
		return strings.HasPrefix(key, prefix)
	}
	return a.Name == key
}

// Validator is a predicate run against an invocation before execution.
type Validator struct {
	Test    func(inv *Invocation) bool
	Message string
}

// Command describes a pluggable transformation step.
type Command struct {
	Name        string
	Title       string
	Description string
	Args        []ArgSpec

	// AllowedContentTypes is advisory metadata. The engine does not enforce it.
	AllowedContentTypes []string

	Validators []Validator

	// DisallowFreeArguments rejects argument keys not matched by Args.
	DisallowFreeArguments bool

	// Passthrough marks commands that do not alter the text.
	Passthrough bool

	Run Func
}

// validate checks the definition itself.
func (c *Command) validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCommand)
	}
	if c.Run == nil {
		return fmt.Errorf("%w: %q has no Run func", ErrInvalidCommand, c.Name)
	}
	return nil
}

// Failures runs every validator and returns the messages of those that fail.
func (c *Command) Failures(inv *Invocation) []string {
	var out []string
	for _, v := range c.Validators {
		if !v.Test(inv) {
			out = append(out, v.Message)
		}
	}
	return out
}

// firstFailure returns the message of the first failing validator.
func (c *Command) firstFailure(inv *Invocation) (string, bool) {
	for _, v := range c.Validators {
		if !v.Test(inv) {
			return v.Message, true
		}
	}
	return "", false
}

// FreeArguments returns argument keys not matched by any ArgSpec.
func (c *Command) FreeArguments(inv *Invocation) []string {
	var out []string
	for _, a := range inv.Arguments {
		if !c.accepts(a.Key) {
			out = append(out, a.Key)
		}
	}
	return out
}

func (c *Command) accepts(key string) bool {
	for _, spec := range c.Args {
		if spec.Matches(key) {
			return true
		}
	}
	return false
}

// AllowsContentType reports whether the advisory metadata lists kind or
// the catch-all. Commands without metadata allow everything.
func (c *Command) AllowsContentType(kind string) bool {
	if len(c.AllowedContentTypes) == 0 {
		return true
	}
	for _, ct := range c.AllowedContentTypes {
		if ct == AnyContentType || strings.Contains(strings.ToLower(kind), strings.ToLower(ct)) {
			return true
		}
	}
	return false
}
