package textflow

import "time"

// Event names a lifecycle point.
type Event string

// Lifecycle events. The names are the observer protocol surface.
const (
	EventPipelineCreated  Event = "textflow:pipeline-created"
	EventPipelineStarting Event = "textflow:pipeline-starting"
	EventCommandStarting  Event = "textflow:command-starting"
	EventCommandFinished  Event = "textflow:command-finished"
	EventPipelineFinished Event = "textflow:pipeline-finished"
	EventReturningData    Event = "textflow:returning-data"
)

// Cancelable reports whether observers may veto e.
func (e Event) Cancelable() bool {
	switch e {
	case EventPipelineStarting, EventCommandStarting, EventReturningData:
		return true
	}
	return false
}

// Signal is passed to observers at each lifecycle point.
type Signal struct {
	Event    Event
	Working  *WorkingData // nil for EventPipelineCreated
	Pipeline *Pipeline
	Command  *Invocation   // set for command events
	Elapsed  time.Duration // set for EventCommandFinished and EventPipelineFinished
}

// Observer receives lifecycle signals. Returning false vetoes a cancelable
// signal; the return value is ignored otherwise.
type Observer interface {
	Observe(s *Signal) bool
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s *Signal) bool

// Observe calls f(s).
func (f ObserverFunc) Observe(s *Signal) bool {
	return f(s)
}

// Hooks builds an Observer from per-event callbacks. Nil callbacks proceed.
type Hooks struct {
	OnPipelineCreated  func(s *Signal)
	OnPipelineStarting func(s *Signal) bool
	OnCommandStarting  func(s *Signal) bool
	OnCommandFinished  func(s *Signal)
	OnPipelineFinished func(s *Signal)
	OnReturningData    func(s *Signal) bool
}

// Observe dispatches s to the matching callback.
func (h Hooks) Observe(s *Signal) bool {
	switch s.Event {
	case EventPipelineCreated:
		if h.OnPipelineCreated != nil {
			h.OnPipelineCreated(s)
		}
	case EventPipelineStarting:
		if h.OnPipelineStarting != nil {
			return h.OnPipelineStarting(s)
		}
	case EventCommandStarting:
		if h.OnCommandStarting != nil {
			return h.OnCommandStarting(s)
		}
	case EventCommandFinished:
		if h.OnCommandFinished != nil {
			h.OnCommandFinished(s)
		}
	case EventPipelineFinished:
		if h.OnPipelineFinished != nil {
			h.OnPipelineFinished(s)
		}
	case EventReturningData:
		if h.OnReturningData != nil {
			return h.OnReturningData(s)
		}
	}
	return true
}
