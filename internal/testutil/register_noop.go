package testutil

import (
	"context"

	"github.com/specialistvlad/actiongrid/internal/registry"
)

// NoOpModule registers a "noop" executor that takes no inputs and does
// nothing. It is useful for tests that only exercise resolution and the
// shape of the tree.
type NoOpModule struct{}

func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterExecutor("noop", registry.Spec{}, registry.ExecutorFunc(func(context.Context, *registry.Call) error {
		return nil
	}))
}
