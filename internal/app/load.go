package app

import (
	"fmt"

	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// ListActions returns the names of the actions found on the search path.
func (app *App) ListActions() ([]string, error) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Listing actions...", "search_path", app.config.SearchPath)
	names, err := app.resolver.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return names, nil
}

// LoadAction resolves the definition of the named action and builds its
// tree with the app's context snapshot. Resolution diagnostics are logged;
// the best-effort definition is still used.
func (app *App) LoadAction(name string) (*tree.Action, error) {
	logger := ctxlog.FromContext(app.ctx).With("action", name)
	logger.Debug("Loading action...", "search_path", app.config.SearchPath)

	doc, diags, err := app.resolver.Resolve(app.ctx, name)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		logger.Warn("Definition diagnostic.", "summary", d.Summary, "detail", d.Detail, "subject", d.Subject)
	}

	var key string
	for k := range doc {
		key = k
	}
	def, _ := doc[key].(map[string]any)
	action, err := tree.FromDocument(key, def, app.config.Context.Metadata(), app.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build action: %w", err)
	}

	logger.Info("Action loaded successfully.", "commands", len(action.Flatten()))
	return action, nil
}
