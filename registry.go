package textflow

import (
	"fmt"
	"sync"
)

// Registry maps command names to descriptors. Build it once at startup and
// share it between pipelines; it is safe for concurrent reads.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds commands. It fails on an invalid definition or a name that
// is already taken, leaving the registry unchanged for that command.
func (r *Registry) Register(cmds ...*Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cmds {
		if err := c.validate(); err != nil {
			return err
		}
		if _, exists := r.commands[c.Name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
		}
		r.commands[c.Name] = c
		r.order = append(r.order, c.Name)
	}
	return nil
}

// MustRegister is Register that panics on error (programmer error at startup).
func (r *Registry) MustRegister(cmds ...*Command) {
	if err := r.Register(cmds...); err != nil {
		panic("textflow: " + err.Error())
	}
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// Get is Lookup returning ErrUnknownCommand for missing names.
func (r *Registry) Get(name string) (*Command, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return c, nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []*Command {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
