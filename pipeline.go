package textflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SetDebugCommand is the sentinel command name that enables debug logging.
// It is removed from the main list at construction.
const SetDebugCommand = "set-debug"

// Pipeline resolves, validates and runs an ordered list of invocations.
// A Pipeline runs one Execute at a time; build one per concurrent run.
type Pipeline struct {
	shared   *Registry
	instance *Registry

	head     []Invocation
	commands []Invocation
	tail     []Invocation

	debug     bool
	observers []Observer
	logger    *slog.Logger
	now       func() time.Time

	runLogger *slog.Logger
}

// NewPipeline creates a pipeline over the shared registry. Every set-debug
// entry is removed from commands and turns the debug flag on. Observers see
// EventPipelineCreated once options are applied, so they may call Register.
func NewPipeline(shared *Registry, commands []Invocation, opts ...Option) *Pipeline {
	p := &Pipeline{
		shared:   shared,
		instance: NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}

	for _, c := range commands {
		if c.Name == SetDebugCommand {
			p.debug = true
			continue
		}
		p.commands = append(p.commands, c.clone())
	}

	for _, opt := range opts {
		opt(p)
	}
	p.runLogger = p.logger

	p.emit(&Signal{Event: EventPipelineCreated, Pipeline: p})
	return p
}

// Register adds commands visible to this pipeline only. Instance commands
// win over shared commands with the same name.
func (p *Pipeline) Register(cmds ...*Command) error {
	return p.instance.Register(cmds...)
}

// Lookup resolves name against the instance registry, then the shared one.
func (p *Pipeline) Lookup(name string) (*Command, bool) {
	if c, ok := p.instance.Lookup(name); ok {
		return c, true
	}
	return p.shared.Lookup(name)
}

// AddHead queues invocations to run before the main list.
func (p *Pipeline) AddHead(cmds ...Invocation) {
	for _, c := range cmds {
		p.head = append(p.head, c.clone())
	}
}

// AddTail queues invocations to run after the main list, for the next run only.
func (p *Pipeline) AddTail(cmds ...Invocation) {
	for _, c := range cmds {
		p.tail = append(p.tail, c.clone())
	}
}

// Commands returns a copy of the main invocation list.
func (p *Pipeline) Commands() []Invocation {
	out := make([]Invocation, len(p.commands))
	for i, c := range p.commands {
		out[i] = c.clone()
	}
	return out
}

// Debug reports whether debug logging is on.
func (p *Pipeline) Debug() bool {
	return p.debug
}

// SetDebug turns debug logging on or off.
func (p *Pipeline) SetDebug(on bool) {
	p.debug = on
}

// Log writes an engine diagnostic. Lines are logged at Info level when the
// debug flag is on, at Debug level otherwise.
func (p *Pipeline) Log(msg string, args ...any) {
	level := slog.LevelDebug
	if p.debug {
		level = slog.LevelInfo
	}
	p.runLogger.Log(context.Background(), level, msg, args...)
}

// Validate checks every main invocation without executing anything and
// returns one message per problem found.
func (p *Pipeline) Validate() []string {
	var errs []string

	for i := range p.commands {
		inv := &p.commands[i]

		cmd, ok := p.Lookup(inv.Name)
		if !ok {
			errs = append(errs, fmt.Sprintf("Unknown command: %q", inv.Name))
			continue
		}

		for _, msg := range cmd.Failures(inv) {
			errs = append(errs, fmt.Sprintf("Command %q: %s", inv.Name, msg))
		}

		if cmd.DisallowFreeArguments {
			for _, key := range cmd.FreeArguments(inv) {
				errs = append(errs, fmt.Sprintf("Command %q: unknown argument %q", inv.Name, key))
			}
		}
	}

	return errs
}

// Execute runs head, main and tail invocations over w and returns the final
// document. Validation failures, command errors and aborts yield a fresh
// empty document; partial output is never returned.
func (p *Pipeline) Execute(ctx context.Context, w *WorkingData) *WorkingData {
	if w == nil {
		w = NewWorkingData("", "", "")
	}
	p.runLogger = p.logger.With("run_id", uuid.NewString())
	defer func() { p.runLogger = p.logger }()

	if !p.emit(&Signal{Event: EventPipelineStarting, Working: w, Pipeline: p}) {
		p.Log("pipeline cancelled by observer", "event", EventPipelineStarting)
		return p.returnWorking(w)
	}

	start := p.now()
	initialInput := w.Text

	queue := make([]Invocation, 0, len(p.head)+len(p.commands)+len(p.tail))
	queue = append(queue, p.head...)
	queue = append(queue, p.commands...)
	queue = append(queue, p.tail...)

	for i := range queue {
		inv := &queue[i]
		p.Log("executing", "command", inv.Name, "arguments", inv.Arguments)

		cmd, ok := p.Lookup(inv.Name)
		if !ok {
			p.Log("unknown command", "command", inv.Name)
			continue
		}

		if msg, failed := cmd.firstFailure(inv); failed {
			p.Log("validation failed", "command", inv.Name, "reason", msg)
			return NewWorkingData("", "", "")
		}

		entry := HistoryEntry{Command: inv.clone(), Input: w.Text}
		beforeLen := utf8.RuneCountInString(w.Text)

		if !p.emit(&Signal{Event: EventCommandStarting, Working: w, Pipeline: p, Command: inv}) {
			p.Log("command cancelled by observer", "command", inv.Name, "event", EventCommandStarting)
			continue
		}

		began := p.now()
		res, err := p.invoke(ctx, cmd, w, inv)
		if err != nil {
			p.Log("command error", "command", inv.Name, "error", err)
			w.Abort()
		} else {
			merge(w, res)
			entry.Duration = p.now().Sub(began)
			p.emit(&Signal{Event: EventCommandFinished, Working: w, Pipeline: p, Command: inv, Elapsed: entry.Duration})
			entry.Delta = utf8.RuneCountInString(w.Text) - beforeLen
			entry.Output = w.Text
		}

		if w.Aborted() {
			p.Log("abort triggered", "command", inv.Name)
			return NewWorkingData("", "", "")
		}

		p.Log("executed", "command", inv.Name, "duration", entry.Duration)
		w.History.Entries = append(w.History.Entries, entry)
	}

	p.tail = nil

	w.History.Duration = p.now().Sub(start)
	w.History.Input = initialInput

	p.emit(&Signal{Event: EventPipelineFinished, Working: w, Pipeline: p, Elapsed: w.History.Duration})

	return p.returnWorking(w)
}

// invoke runs a command body and converts a panic into an error.
func (p *Pipeline) invoke(ctx context.Context, cmd *Command, w *WorkingData, inv *Invocation) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrCommandFailed, inv.Name, r)
		}
	}()

	res, err = cmd.Run(ctx, w, inv, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCommandFailed, inv.Name, err)
	}
	return res, nil
}

// returnWorking runs the returning-data check.
func (p *Pipeline) returnWorking(w *WorkingData) *WorkingData {
	if !p.emit(&Signal{Event: EventReturningData, Working: w, Pipeline: p}) {
		p.Log("return of data cancelled by observer", "event", EventReturningData)
		return NewWorkingData("", "", "")
	}
	return w
}

// emit notifies every observer in order. It returns false when the signal
// is cancelable and at least one observer vetoed it.
func (p *Pipeline) emit(s *Signal) bool {
	proceed := true
	for _, o := range p.observers {
		if !o.Observe(s) {
			proceed = false
		}
	}
	return proceed || !s.Event.Cancelable()
}
