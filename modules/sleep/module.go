package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Executor waits for its duration input, a Go duration string.
type Executor struct{}

func parse(call *registry.Call) (time.Duration, error) {
	raw, _ := call.Inputs["duration"].(string)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// Setup marks the command invalid when the duration does not parse.
func (Executor) Setup(ctx context.Context, call *registry.Call) error {
	if _, err := parse(call); err != nil {
		call.Logger.Error("Invalid duration.", "error", err)
		call.Command.SetStatus(status.Invalid)
	}
	return nil
}

func (Executor) Execute(ctx context.Context, call *registry.Call) error {
	d, err := parse(call)
	if err != nil {
		return err
	}
	call.Logger.Debug("Sleeping.", "duration", d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Register registers the executor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor("sleep", registry.Spec{
		Inputs: []tree.SocketSpec{
			{Name: "duration", Tooltip: "How long to wait, e.g. 1.5s.", Type: sockettype.String, Value: "1s"},
		},
	}, Executor{})
}
