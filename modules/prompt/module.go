// Package prompt provides a command that asks the user for a value before it
// runs.
package prompt

import (
	"context"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Executor asks for its value input until one is given, then outputs it.
type Executor struct{}

// Setup requests a prompt while the value is empty.
func (Executor) Setup(ctx context.Context, call *registry.Call) error {
	value, _ := call.Inputs["value"].(string)
	call.Command.SetAskUser(value == "")
	return nil
}

func (Executor) Execute(ctx context.Context, call *registry.Call) error {
	value, _ := call.Inputs["value"].(string)
	if value == "" {
		call.Logger.Warn("No answer given, continuing with an empty value.")
	} else {
		call.Logger.Info("🙋 Answer received", "question", call.Inputs["question"], "answer", value)
	}
	call.Outputs["answer"] = value
	return nil
}

// Register registers the executor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor("prompt", registry.Spec{
		Inputs: []tree.SocketSpec{
			{Name: "question", Type: sockettype.Text, Hide: true},
			{Name: "value", Type: sockettype.String},
		},
		Outputs: []tree.SocketSpec{
			{Name: "answer", Type: sockettype.String},
		},
	}, Executor{})
}
