package registry

import (
	"context"

	"github.com/specialistvlad/actiongrid/internal/ctxlog"
)

// Load registers every module and validates the resulting specifications.
func (r *Registry) Load(ctx context.Context, modules ...Module) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading modules...", "count", len(modules))

	for _, mod := range modules {
		mod.Register(r)
	}

	if err := r.Validate(ctx); err != nil {
		return err
	}

	logger.Debug("Registry loaded successfully.", "executors", r.Names())
	return nil
}
