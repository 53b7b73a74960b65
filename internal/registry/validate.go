package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Validate checks every registered specification: socket names must be
// valid and unique per direction, and initial values must fit their type.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Names() {
		spec := r.executors[name].Spec
		for direction, sockets := range map[string][]tree.SocketSpec{"input": spec.Inputs, "output": spec.Outputs} {
			seen := make(map[string]bool)
			for _, s := range sockets {
				slug := tree.Slugify(s.Name)
				if slug == "" {
					errs = append(errs, fmt.Sprintf("executor '%s': %s socket with empty name", name, direction))
					continue
				}
				if seen[slug] {
					errs = append(errs, fmt.Sprintf("executor '%s': duplicate %s socket '%s'", name, direction, slug))
				}
				seen[slug] = true

				if s.Type == nil || s.Type.Kind() == sockettype.KindAny {
					logger.Debug("Executor socket has type 'any', which disables casting.", "executor", name, "socket", slug)
					continue
				}
				if s.Value == nil {
					continue
				}
				if _, err := s.Type.Cast(s.Value); err != nil {
					errs = append(errs, fmt.Sprintf("executor '%s', %s '%s': initial value does not fit its type: %v", name, direction, slug, err))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
