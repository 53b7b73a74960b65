package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/fsutil"
)

// ErrNotFound is returned when no definition file exists for an action.
var ErrNotFound = errors.New("action definition not found")

// Extensions are the file extensions recognized on the search path.
var Extensions = []string{".yml", ".yaml"}

// Resolver locates and resolves action definitions.
type Resolver struct {
	// SearchPath is the ordered list of directories to look in. The first
	// directory containing a file wins.
	SearchPath []string
	// TaskType selects the `tasks` overlay applied over the definition.
	TaskType string
}

// New creates a resolver.
func New(searchPath []string, taskType string) *Resolver {
	return &Resolver{SearchPath: searchPath, TaskType: taskType}
}

// Resolve returns `{name: definition}` for the named action.
func (r *Resolver) Resolve(ctx context.Context, name string) (map[string]any, hcl.Diagnostics, error) {
	logger := ctxlog.FromContext(ctx).With("action", name)
	logger.Debug("Resolving action definition...", "search_path", r.SearchPath, "task_type", r.TaskType)

	path, err := fsutil.Lookup(r.SearchPath, name, Extensions...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q: %v", ErrNotFound, name, err)
	}

	l := newLoader(r.SearchPath)
	root, err := l.parseFile(path)
	if err != nil {
		return nil, l.diags, fmt.Errorf("reading definition of %q: %w", name, err)
	}
	l.active = append(l.active, refID(path, ""))
	decoded := l.decode(root, path)

	doc, ok := decoded.(map[string]any)
	if !ok {
		return nil, l.diags, fmt.Errorf("definition file %s must contain a mapping, got %T", path, decoded)
	}

	key := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	def, ok := doc[key].(map[string]any)
	if !ok {
		if _, hasSteps := doc[stepsKey]; !hasSteps {
			return nil, l.diags, fmt.Errorf("%w: %s has no %q key", ErrNotFound, path, key)
		}
		def = doc
	}

	if r.TaskType != "" {
		def = l.applyTaskOverlay(def, r.TaskType, path)
	}
	delete(def, tasksKey)
	finalize(def)

	if len(l.diags) > 0 {
		logger.Warn("Action definition resolved with diagnostics.", "file", path, "diagnostics", l.diags.Error())
	} else {
		logger.Debug("Action definition resolved.", "file", path)
	}
	return map[string]any{key: def}, l.diags, nil
}

// List returns the names of the actions available on the search path.
func (r *Resolver) List() ([]string, error) {
	return fsutil.ListNames(r.SearchPath, Extensions...)
}

func (l *loader) applyTaskOverlay(def map[string]any, taskType, file string) map[string]any {
	tasks, ok := def[tasksKey].(map[string]any)
	if !ok {
		return def
	}
	raw, ok := tasks[taskType]
	if !ok {
		return def
	}
	over, ok := raw.(map[string]any)
	if !ok {
		l.errorf(file, nil, "Invalid task overlay", "tasks.%s must be a mapping, got %T", taskType, raw)
		return def
	}
	merged, err := overlay(def, over)
	if err != nil {
		l.errorf(file, nil, "Task overlay could not be merged", "tasks.%s: %v", taskType, err)
		return def
	}
	return merged
}
