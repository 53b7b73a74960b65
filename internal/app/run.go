package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/engine"
	"github.com/specialistvlad/actiongrid/internal/syncchannel"
	"github.com/specialistvlad/actiongrid/internal/transport"
	"golang.org/x/sync/errgroup"
)

// Run executes the configured actions concurrently, each in its own query,
// and returns the first failure.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	if len(a.config.Actions) == 0 {
		a.logger.Warn("No actions given, execution not required.")
		return nil
	}

	hub, disconnect := a.connect(ctx)
	defer disconnect()

	a.logger.Info("🚀 Running actions", "actions", a.config.Actions, "sync", hub != nil)
	var g errgroup.Group
	for _, name := range a.config.Actions {
		g.Go(func() error { return a.runAction(ctx, hub, name) })
	}
	err := g.Wait()
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) runAction(ctx context.Context, hub *syncchannel.Hub, name string) error {
	action, err := a.LoadAction(name)
	if err != nil {
		return fmt.Errorf("action %q: %w", name, err)
	}

	q := engine.New(ctx, action, a.registry, engine.Options{
		Hub:           hub,
		Metrics:       a.engineMetrics,
		ClearOnCancel: true,
	})
	defer q.Close()

	if err := q.Run(ctx, engine.ExecuteOptions{StepByStep: a.config.StepByStep}); err != nil {
		return fmt.Errorf("action %q: %w", name, err)
	}
	return nil
}

// connect opens the sync hub. It returns a nil hub in batch mode or when the
// observer cannot be reached: sync is best effort and runs continue locally.
func (a *App) connect(ctx context.Context) (*syncchannel.Hub, func()) {
	noop := func() {}
	if a.config.Batch {
		a.logger.Debug("Batch mode, sync disabled.")
		return nil, noop
	}

	t := a.transport
	if t == nil {
		if a.config.Sync.URL == "" {
			a.logger.Debug("No sync URL configured, sync disabled.")
			return nil, noop
		}
		sio, err := transport.DialSocketIO(ctx, transport.SocketIOConfig{
			URL:                a.config.Sync.URL,
			Namespace:          a.config.Sync.Namespace,
			InsecureSkipVerify: a.config.Sync.InsecureSkipVerify,
		})
		if err != nil {
			a.logger.Warn("Sync observer unreachable, continuing without sync.", "url", a.config.Sync.URL, "error", err)
			return nil, noop
		}
		t = sio
	}

	a.logger.Info("🔌 Sync channel connected")
	return syncchannel.NewHub(ctx, t, a.metrics), func() {
		if err := t.Close(); err != nil {
			a.logger.Debug("Closing transport failed.", "error", err)
		}
	}
}
