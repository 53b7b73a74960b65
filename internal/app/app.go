package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/engine"
	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/resolver"
	"github.com/specialistvlad/actiongrid/internal/transport"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	ctx      context.Context
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	resolver *resolver.Resolver

	metrics       *prometheus.Registry
	engineMetrics *engine.Metrics

	// transport overrides the socket.io connection built from the config.
	transport  transport.Transport
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics registry. Modules default to the core modules.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := reg.Load(ctx, modules...); err != nil {
		// A mismatch between executor code and its declared sockets is a
		// programmer error.
		panic(fmt.Errorf("failed to load modules: %w", err))
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		outW:          outW,
		ctx:           ctx,
		logger:        logger,
		config:        cfg,
		registry:      reg,
		resolver:      resolver.New(cfg.SearchPath, cfg.Context.TaskType),
		metrics:       metrics,
		engineMetrics: engine.NewMetrics(metrics),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// SetTransport attaches runs to t instead of dialing the configured sync
// URL.
func (a *App) SetTransport(t transport.Transport) {
	a.transport = t
}
