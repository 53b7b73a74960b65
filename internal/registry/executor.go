package registry

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Call carries everything an executor needs for one invocation.
type Call struct {
	// Inputs holds the evaluated input socket values by name.
	Inputs map[string]any
	// Outputs collects output values by socket name. Keys that do not name
	// an output socket are rejected after the call.
	Outputs map[string]any
	// Context is the action's context metadata with step overrides applied.
	Context map[string]any
	Store   tree.Store
	Logger  *slog.Logger
	// Command is the command being executed. Executors may adjust its
	// sockets, prompt flag, progress or status.
	Command *tree.Command
}

// Executor runs a command forward.
type Executor interface {
	Execute(ctx context.Context, call *Call) error
}

// Setupper is implemented by executors that adjust their command before it
// runs, including whether it needs to prompt the user.
type Setupper interface {
	Setup(ctx context.Context, call *Call) error
}

// Undoer is implemented by executors that can reverse their effect.
type Undoer interface {
	Undo(ctx context.Context, call *Call) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, call *Call) error

func (f ExecutorFunc) Execute(ctx context.Context, call *Call) error {
	return f(ctx, call)
}
