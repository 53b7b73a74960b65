package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/actiongrid/internal/tree"
)

var (
	// ErrUnknownDefinition is returned when no executor is registered under a
	// definition name.
	ErrUnknownDefinition = errors.New("unknown command definition")
	// ErrUnknownOutput is returned when an executor sets an output its
	// definition does not declare.
	ErrUnknownOutput = errors.New("unknown output")
)

// Module is the interface that all executor modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Spec declares the sockets and required context of a definition.
type Spec struct {
	Inputs  []tree.SocketSpec
	Outputs []tree.SocketSpec
	// RequiredContext lists context metadata keys that must be present for
	// the command to be valid.
	RequiredContext []string
}

// RegisteredExecutor pairs an executor with its socket specification.
type RegisteredExecutor struct {
	Name     string
	Spec     Spec
	Executor Executor
}

// Registry holds the registered executors of a single application instance.
type Registry struct {
	executors map[string]*RegisteredExecutor
}

var _ tree.Catalog = (*Registry)(nil)

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		executors: make(map[string]*RegisteredExecutor),
	}
}

// Lookup returns the executor registered under name.
func (r *Registry) Lookup(name string) (*RegisteredExecutor, error) {
	reg, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefinition, name)
	}
	return reg, nil
}

// Blueprint implements tree.Catalog.
func (r *Registry) Blueprint(definition string) ([]tree.SocketSpec, []tree.SocketSpec, bool) {
	reg, ok := r.executors[definition]
	if !ok {
		return nil, nil, false
	}
	return slices.Clone(reg.Spec.Inputs), slices.Clone(reg.Spec.Outputs), true
}

// Names returns the registered definition names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.executors))
}

// MissingContext returns the required context keys of definition that are
// absent from ctx.
func (r *Registry) MissingContext(definition string, ctx map[string]any) []string {
	reg, ok := r.executors[definition]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range reg.Spec.RequiredContext {
		if v, ok := ctx[key]; !ok || v == nil || v == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
