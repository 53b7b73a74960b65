package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Executor reads environment variables. With no names given it returns the
// whole environment.
type Executor struct{}

func (Executor) Execute(ctx context.Context, call *registry.Call) error {
	names, _ := call.Inputs["names"].([]any)
	values := make(map[string]any)
	if len(names) == 0 {
		for _, e := range os.Environ() {
			pair := strings.SplitN(e, "=", 2)
			if len(pair) == 2 {
				values[pair[0]] = pair[1]
			}
		}
	}
	for _, n := range names {
		name := n.(string)
		if v, ok := os.LookupEnv(name); ok {
			values[name] = v
		} else {
			call.Logger.Debug("Environment variable not set.", "name", name)
		}
	}
	call.Outputs["values"] = values
	return nil
}

// Register registers the executor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor("env_vars", registry.Spec{
		Inputs: []tree.SocketSpec{
			{Name: "names", Type: sockettype.List{Elem: sockettype.String}},
		},
		Outputs: []tree.SocketSpec{
			{Name: "values", Type: sockettype.Any},
		},
	}, Executor{})
}
