package textflow

import "context"

// ExecutePipeline builds a document from input and runs commands over it.
func ExecutePipeline(ctx context.Context, reg *Registry, input, contentType, source string, commands []Invocation, opts ...Option) *WorkingData {
	w := NewWorkingData(input, contentType, source)
	return NewPipeline(reg, commands, opts...).Execute(ctx, w)
}

// ValidateCommands checks commands against reg without executing anything.
func ValidateCommands(reg *Registry, commands []Invocation) []string {
	return NewPipeline(reg, commands).Validate()
}
