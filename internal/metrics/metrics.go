// Package metrics records pipeline lifecycle signals as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alnah/textflow"
)

// Observer is a textflow.Observer backed by Prometheus collectors. It holds
// no per-run state, so one Observer may watch many pipelines at once.
type Observer struct {
	runs             prometheus.Counter
	completed        prometheus.Counter
	pipelineDuration prometheus.Histogram
	commands         *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	vetoes           *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textflow_pipeline_runs_total",
			Help: "Pipeline runs started.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textflow_pipeline_completed_total",
			Help: "Pipeline runs that reached the end of their command list.",
		}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "textflow_pipeline_duration_seconds",
			Help:    "Duration of completed pipeline runs.",
			Buckets: prometheus.DefBuckets,
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textflow_commands_total",
			Help: "Commands that finished successfully.",
		}, []string{"command"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "textflow_command_duration_seconds",
			Help:    "Duration of successful command executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		vetoes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textflow_vetoes_total",
			Help: "Cancelable signals vetoed by an observer.",
		}, []string{"event"}),
	}

	for _, c := range []prometheus.Collector{o.runs, o.completed, o.pipelineDuration, o.commands, o.commandDuration, o.vetoes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return o, nil
}

// Observe records s and never vetoes.
func (o *Observer) Observe(s *textflow.Signal) bool {
	switch s.Event {
	case textflow.EventPipelineStarting:
		o.runs.Inc()
	case textflow.EventCommandFinished:
		name := s.Command.Name
		o.commands.WithLabelValues(name).Inc()
		o.commandDuration.WithLabelValues(name).Observe(s.Elapsed.Seconds())
	case textflow.EventPipelineFinished:
		o.completed.Inc()
		o.pipelineDuration.Observe(s.Elapsed.Seconds())
	}
	return true
}

// CountVetoes wraps inner so every veto it issues is counted by event.
func (o *Observer) CountVetoes(inner textflow.Observer) textflow.Observer {
	return textflow.ObserverFunc(func(s *textflow.Signal) bool {
		ok := inner.Observe(s)
		if !ok && s.Event.Cancelable() {
			o.vetoes.WithLabelValues(string(s.Event)).Inc()
		}
		return ok
	})
}
