package registry

import (
	"fmt"
	"log/slog"
)

// RegisterExecutor registers an executor and its socket specification under
// a definition name.
func (r *Registry) RegisterExecutor(name string, spec Spec, exec Executor) {
	if _, exists := r.executors[name]; exists {
		panic(fmt.Sprintf("executor with name '%s' already registered", name))
	}
	if exec == nil {
		panic(fmt.Sprintf("executor '%s' registered without an implementation", name))
	}
	_, setup := exec.(Setupper)
	_, undo := exec.(Undoer)
	slog.Debug("Registering executor.", "name", name, "setup", setup, "undo", undo)
	r.executors[name] = &RegisteredExecutor{Name: name, Spec: spec, Executor: exec}
}
