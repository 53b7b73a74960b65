// Package fail provides a command that always fails.
package fail

import (
	"context"
	"errors"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type Executor struct{}

func (Executor) Execute(ctx context.Context, call *registry.Call) error {
	message, _ := call.Inputs["message"].(string)
	return errors.New(message)
}

// Register registers the executor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor("fail", registry.Spec{
		Inputs: []tree.SocketSpec{
			{Name: "message", Type: sockettype.String, Value: "command failed"},
		},
	}, Executor{})
}
