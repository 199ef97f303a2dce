package textflow

import "errors"

// Sentinel errors for registry and pipeline operations.
var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrDuplicateCommand = errors.New("command already registered")
	ErrInvalidCommand   = errors.New("invalid command definition")
	ErrValidation       = errors.New("command validation failed")
	ErrCommandFailed    = errors.New("command failed")
)
