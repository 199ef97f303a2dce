package textflow

import (
	"log/slog"
	"time"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for engine diagnostics.
// Panics if l is nil (programmer error).
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("textflow: WithLogger logger must not be nil")
	}
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithObservers appends lifecycle observers, called in the given order.
func WithObservers(obs ...Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, obs...)
	}
}

// WithHeadCommands queues invocations that run before the main list.
func WithHeadCommands(cmds ...Invocation) Option {
	return func(p *Pipeline) {
		p.AddHead(cmds...)
	}
}

// WithTailCommands queues invocations that run after the main list.
// Tail commands are cleared after every completed run.
func WithTailCommands(cmds ...Invocation) Option {
	return func(p *Pipeline) {
		p.AddTail(cmds...)
	}
}

// WithDebug turns on debug logging from the start.
func WithDebug(on bool) Option {
	return func(p *Pipeline) {
		p.debug = p.debug || on
	}
}

// WithClock replaces time.Now, for deterministic durations in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}
