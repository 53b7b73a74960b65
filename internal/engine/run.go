package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// run is the body of one run. The tree lock is held for one command at a
// time so that controls and snapshots get in between commands.
func (q *ActionQuery) run(ctx context.Context, opts ExecuteOptions) error {
	q.mu.Lock()
	direction := q.iterator.Direction()
	q.startSync(ctx)
	q.mu.Unlock()

	q.logger.Info("▶️ Running action", "direction", direction, "step_by_step", opts.StepByStep)
	start := time.Now()
	executed := 0
	for {
		if err := ctx.Err(); err != nil {
			return q.cancelled(err)
		}
		more, err := q.iterate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return q.cancelled(err)
			}
			return err
		}
		if !more {
			break
		}
		executed++
		if opts.StepByStep {
			break
		}
	}

	final := q.Status()
	q.logger.Info("🏁 Action run finished", "status", final, "commands", executed, "duration", time.Since(start))
	if final.Failed() {
		return fmt.Errorf("%w: %s is %s", ErrFailed, q.action.Name(), final)
	}
	return nil
}

func (q *ActionQuery) cancelled(err error) error {
	q.logger.Info("⏹️ Action run cancelled")
	if q.opts.ClearOnCancel && q.channel != nil {
		q.mu.Lock()
		if err := q.channel.Clear(q.ctx); err != nil {
			q.logger.Warn("Failed to clear remote view.", "error", err)
		}
		q.mu.Unlock()
	}
	return err
}

// iterate runs the loop body for one command. It returns false when there
// is nothing left to run.
func (q *ActionQuery) iterate(ctx context.Context) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.applyRemoteEdits(ctx)

	cmd, ok := q.iterator.Next()
	if !ok {
		return false, nil
	}
	direction := q.iterator.Direction()
	logger := q.logger.With("command", cmd.Path())

	cmd.SetStatus(status.Initialized)
	if s := q.action.Status(); s.Failed() {
		logger.Warn("Action is in a failed state, stopping.", "status", s)
		q.iterator.Rewind()
		return false, nil
	}

	// The prompt requirement is evaluated by the executor's setup. Setup
	// runs again once an answer has been applied.
	valid := q.setup(ctx, cmd)
	if direction == status.Forward && valid && cmd.AskUser() {
		if err := q.promptCommands(ctx, cmd); err != nil {
			q.iterator.Rewind()
			return false, err
		}
		valid = q.setup(ctx, cmd)
	}

	if valid {
		q.execute(ctx, cmd, direction)
	}
	q.sync(ctx)
	return true, nil
}

// setup runs the executor's setup hook and reports whether the command is
// still valid.
func (q *ActionQuery) setup(ctx context.Context, cmd *tree.Command) bool {
	reg, err := q.registry.Lookup(cmd.Definition())
	if err != nil {
		q.invalidate(cmd, err)
		return false
	}
	setupper, ok := reg.Executor.(registry.Setupper)
	if !ok {
		return !cmd.Status().Failed()
	}
	call, err := q.newCall(cmd)
	if err != nil {
		q.invalidate(cmd, err)
		return false
	}
	if err := setupper.Setup(ctx, call); err != nil {
		q.invalidate(cmd, fmt.Errorf("setup: %w", err))
		return false
	}
	return !cmd.Status().Failed()
}

// execute dispatches cmd to its executor in the given direction.
func (q *ActionQuery) execute(ctx context.Context, cmd *tree.Command, direction status.Execution) {
	logger := q.logger.With("command", cmd.Path(), "definition", cmd.Definition())
	if cmd.Skip() {
		logger.Info("⏭️ Skipping command")
		cmd.SetStatus(status.Initialized)
		return
	}
	reg, err := q.registry.Lookup(cmd.Definition())
	if err != nil {
		q.invalidate(cmd, err)
		return
	}
	call, err := q.newCall(cmd)
	if err != nil {
		q.invalidate(cmd, err)
		return
	}

	cmd.SetStatus(status.Processing)
	logger.Info("▶️ Starting command", "direction", direction)
	start := time.Now()
	switch direction {
	case status.Backward:
		if undoer, ok := reg.Executor.(registry.Undoer); ok {
			err = undoer.Undo(ctx, call)
		} else {
			logger.Debug("Executor has no undo, nothing to reverse.")
		}
	default:
		err = reg.Executor.Execute(ctx, call)
	}
	elapsed := time.Since(start)
	q.metrics.CommandDuration.WithLabelValues(cmd.Definition()).Observe(elapsed.Seconds())

	switch {
	case err != nil && ctx.Err() != nil:
		logger.Info("Command interrupted by cancellation.")
		cmd.SetStatus(status.Initialized)
		q.iterator.Rewind()
	case err != nil:
		logger.Error("Command failed.", "error", err)
		cmd.AppendLog(slog.LevelError.String(), err.Error())
		cmd.SetStatus(status.Error)
	case cmd.Status().Failed():
		logger.Warn("Executor reported a failed status.", "status", cmd.Status())
	case direction == status.Backward:
		cmd.SetStatus(status.Initialized)
		logger.Info("✅ Finished undoing command", "duration", elapsed)
	default:
		if err := storeOutputs(cmd, call.Outputs); err != nil {
			logger.Error("Command produced invalid outputs.", "error", err)
			cmd.AppendLog(slog.LevelError.String(), err.Error())
			cmd.SetStatus(status.Error)
			break
		}
		cmd.SetStatus(status.Completed)
		logger.Info("✅ Finished command", "duration", elapsed)
	}
	q.metrics.CommandsExecuted.WithLabelValues(cmd.Definition(), direction.String(), cmd.Status().String()).Inc()
}

// newCall gathers everything the executor of cmd receives.
func (q *ActionQuery) newCall(cmd *tree.Command) (*registry.Call, error) {
	metadata := cmd.Context()
	if missing := q.registry.MissingContext(cmd.Definition(), metadata); len(missing) > 0 {
		return nil, fmt.Errorf("missing required context %v", missing)
	}
	inputs, err := cmd.EvalInputs()
	if err != nil {
		return nil, err
	}
	logger := slog.New(newCommandLogHandler(q.logger.Handler(), cmd)).With("command", cmd.Path())
	return &registry.Call{
		Inputs:  inputs,
		Outputs: make(map[string]any),
		Context: metadata,
		Store:   cmd.Store(),
		Logger:  logger,
		Command: cmd,
	}, nil
}

func storeOutputs(cmd *tree.Command, outputs map[string]any) error {
	var errs []error
	for name, value := range outputs {
		socket := cmd.Output(name)
		if socket == nil {
			errs = append(errs, fmt.Errorf("%w: no output socket %q", registry.ErrUnknownOutput, name))
			continue
		}
		socket.SetValue(value)
	}
	return errors.Join(errs...)
}

func (q *ActionQuery) invalidate(cmd *tree.Command, err error) {
	q.logger.Warn("Command is invalid.", "command", cmd.Path(), "error", err)
	cmd.AppendLog(slog.LevelError.String(), err.Error())
	cmd.SetStatus(status.Invalid)
}

func (q *ActionQuery) startSync(ctx context.Context) {
	if q.channel == nil {
		return
	}
	if q.action.Hidden() {
		q.channel.Rebase()
		return
	}
	if err := q.channel.Initialize(ctx); err != nil {
		q.logger.Warn("Failed to send action snapshot, continuing without sync.", "error", err)
	}
}

// sync pushes the changes since the last sync. Failures only disable the
// push.
func (q *ActionQuery) sync(ctx context.Context) {
	if q.channel == nil {
		return
	}
	if _, err := q.channel.Update(ctx); err != nil {
		q.logger.Warn("Failed to push update.", "error", err)
	}
}

func (q *ActionQuery) applyRemoteEdits(ctx context.Context) {
	if q.channel == nil || !q.channel.Pending() {
		return
	}
	n, err := q.channel.ApplyRemote(ctx)
	if err != nil {
		q.logger.Warn("Some remote edits could not be applied.", "error", err)
	}
	q.logger.Debug("Applied remote edits.", "count", n)
}
