package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/config"
	"github.com/alnah/textflow/internal/metrics"
	"github.com/alnah/textflow/internal/server"
	"github.com/alnah/textflow/internal/telemetry"
)

func runServe(ctx context.Context, args []string, env *Environment) error {
	f, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := loadSettings(f.common, env)
	if err != nil {
		return err
	}
	if f.addr != "" {
		s.Server.Addr = f.addr
	}
	logger := newLogger(s, env)

	if f.trace {
		shutdown, err := telemetry.InitTracer("textflow", env.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("trace shutdown failed", "error", err)
			}
		}()
	}

	reg, err := buildRegistry(s, env, f.templates, f.browser)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	srv, err := newServer(s, reg.Registry, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, s.Server)
}

// newServer builds the API server with a private Prometheus registry.
func newServer(s *config.Settings, reg *textflow.Registry, logger *slog.Logger) (*server.Server, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs, err := metrics.New(promReg)
	if err != nil {
		return nil, err
	}

	return server.New(reg, logger,
		server.WithObservers(obs),
		server.WithMetricsHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})),
		server.WithRequestTimeout(s.Server.WriteTimeout),
	), nil
}
