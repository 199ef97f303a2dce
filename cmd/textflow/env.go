package main

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/alnah/textflow/internal/fetch"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsTerminal reports whether Stdin is interactive; run only reads
	// piped input.
	StdinIsTerminal func() bool

	Getenv func(string) string

	// Fetcher replaces the HTTP client built from settings when set.
	Fetcher fetch.Fetcher
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:             time.Now,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		StdinIsTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		Getenv:          os.Getenv,
	}
}
