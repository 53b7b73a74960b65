package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed messages. Defaults to os.Stdout.
	Out io.Writer
}

// Executor writes its message input and passes it on.
type Executor struct {
	out io.Writer
}

func (e *Executor) Execute(ctx context.Context, call *registry.Call) error {
	message := call.Inputs["message"]
	text := "(null)"
	if message != nil {
		text = fmt.Sprint(message)
	}
	call.Logger.Info("Printing message", "message", text)
	if _, err := fmt.Fprintf(e.out, "      %s\n", text); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	call.Outputs["printed"] = text
	return nil
}

// Register registers the executor with the registry.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.RegisterExecutor("print", registry.Spec{
		Inputs: []tree.SocketSpec{
			{Name: "message", Tooltip: "Value to print.", Type: sockettype.Any},
		},
		Outputs: []tree.SocketSpec{
			{Name: "printed", Type: sockettype.String},
		},
	}, &Executor{out: out})
}
