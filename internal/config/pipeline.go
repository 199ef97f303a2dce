package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/yamlutil"
)

// Sentinel errors for pipeline definitions.
var (
	ErrPipelineNotFound   = errors.New("pipeline file not found")
	ErrPipelineParse      = errors.New("failed to parse pipeline")
	ErrEmptyCommandName   = errors.New("command name cannot be empty")
	ErrInvalidArgument    = errors.New("invalid command argument")
	ErrInvalidCommandLine = errors.New("invalid command line")
)

// PipelineFile is a YAML pipeline definition:
//
//	input: "# Title"
//	contentType: text/markdown
//	commands:
//	  - name: markdown
//	  - name: wrap
//	    args:
//	      tag: article
//	      class: post
//
// Argument order is kept as written.
type PipelineFile struct {
	Input       string        `yaml:"input"`
	ContentType string        `yaml:"contentType"`
	Source      string        `yaml:"source"`
	Commands    []CommandSpec `yaml:"commands"`
}

// CommandSpec is one entry of PipelineFile.Commands.
type CommandSpec struct {
	Name string            `yaml:"name"`
	Args yamlutil.MapSlice `yaml:"args"`
}

// ParsePipeline decodes a pipeline definition. Unknown fields are rejected.
func ParsePipeline(data []byte) (*PipelineFile, error) {
	var pf PipelineFile
	if err := yamlutil.UnmarshalStrict(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPipelineParse, err)
	}
	if _, err := pf.Invocations(); err != nil {
		return nil, err
	}
	return &pf, nil
}

// LoadPipeline reads and decodes a pipeline definition file.
func LoadPipeline(path string) (*PipelineFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- pipeline path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPipelineNotFound, path)
		}
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}
	return ParsePipeline(data)
}

// Invocations converts the command list into engine invocations. Argument
// values must be scalars; null becomes the empty string.
func (pf *PipelineFile) Invocations() ([]textflow.Invocation, error) {
	out := make([]textflow.Invocation, 0, len(pf.Commands))
	for i, c := range pf.Commands {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: commands[%d]", ErrEmptyCommandName, i)
		}

		inv := textflow.Invocation{Name: name}
		for _, item := range c.Args {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}
			value, err := yamlutil.ScalarString(item.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidArgument, name, key, err)
			}
			inv.Arguments = append(inv.Arguments, textflow.Argument{Key: key, Value: value})
		}
		out = append(out, inv)
	}
	return out, nil
}

// ParseCommandLine parses "name key=value key='quoted value'" into an
// invocation. Words follow shell quoting rules; the first word is the
// command name and the rest must contain "=".
func ParseCommandLine(line string) (textflow.Invocation, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return textflow.Invocation{}, fmt.Errorf("%w: %v", ErrInvalidCommandLine, err)
	}
	if len(words) == 0 {
		return textflow.Invocation{}, fmt.Errorf("%w: %q", ErrEmptyCommandName, line)
	}

	inv := textflow.Invocation{Name: words[0]}
	for _, w := range words[1:] {
		key, value, ok := strings.Cut(w, "=")
		if !ok || key == "" {
			return textflow.Invocation{}, fmt.Errorf("%w: %q is not key=value", ErrInvalidCommandLine, w)
		}
		inv.Arguments = append(inv.Arguments, textflow.Argument{Key: key, Value: value})
	}
	return inv, nil
}
