package testutil

import "github.com/specialistvlad/actiongrid/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single executor.
type SimpleModule struct {
	Name     string
	Spec     registry.Spec
	Executor registry.Executor
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	r.RegisterExecutor(m.Name, m.Spec, m.Executor)
}
