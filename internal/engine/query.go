package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/syncchannel"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

var (
	// ErrRunning is returned when starting a run while one is in progress.
	ErrRunning = errors.New("action is already running")
	// ErrFailed is returned by a run that left the action INVALID or ERROR.
	ErrFailed = errors.New("action failed")
)

// Options configure an ActionQuery.
type Options struct {
	// Hub attaches the query to a remote observer. Without a hub the query
	// runs in batch mode: nothing is synced and prompts are skipped.
	Hub *syncchannel.Hub
	// Metrics defaults to an unregistered set.
	Metrics *Metrics
	// ClearOnCancel asks the observer to drop its view when a run is
	// cancelled.
	ClearOnCancel bool
}

// ExecuteOptions configure one run.
type ExecuteOptions struct {
	// StepByStep stops the run after one command.
	StepByStep bool
}

// ActionQuery owns an action and runs it.
type ActionQuery struct {
	ctx      context.Context
	action   *tree.Action
	registry *registry.Registry
	channel  *syncchannel.Channel
	metrics  *Metrics
	logger   *slog.Logger
	opts     Options

	// mu guards the tree, the iterator and the channel.
	mu       sync.Mutex
	iterator *CommandIterator

	// runMu guards the state of the current run.
	runMu      sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	err        error
	stepByStep bool
}

// New creates the query of action. ctx carries the logger and bounds the
// runs started by remote controls.
func New(ctx context.Context, action *tree.Action, reg *registry.Registry, opts Options) *ActionQuery {
	q := &ActionQuery{
		ctx:      ctx,
		action:   action,
		registry: reg,
		metrics:  opts.Metrics,
		logger:   ctxlog.FromContext(ctx).With("action", action.Name(), "uuid", action.UUID()),
		opts:     opts,
		iterator: NewCommandIterator(action),
	}
	if q.metrics == nil {
		q.metrics = NewMetrics(nil)
	}
	if opts.Hub != nil {
		q.channel = opts.Hub.Open(action, q.HandleControl)
	}
	return q
}

// Action returns the action owned by the query. Reading it while a run is
// in progress must go through Snapshot.
func (q *ActionQuery) Action() *tree.Action { return q.action }

// Close detaches the query from its sync channel.
func (q *ActionQuery) Close() {
	if q.channel != nil {
		q.channel.Close()
	}
}

// Execute starts a run in the background. Use Wait for its result.
func (q *ActionQuery) Execute(ctx context.Context, opts ExecuteOptions) error {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	if q.runningLocked() {
		return ErrRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	q.cancel, q.done, q.err, q.stepByStep = cancel, done, nil, opts.StepByStep

	go func() {
		err := q.run(runCtx, opts)
		cancel()
		q.runMu.Lock()
		q.err = err
		q.runMu.Unlock()
		close(done)
	}()
	return nil
}

// Run executes the action and waits for the run to end.
func (q *ActionQuery) Run(ctx context.Context, opts ExecuteOptions) error {
	if err := q.Execute(ctx, opts); err != nil {
		return err
	}
	return q.Wait()
}

// Wait blocks until the current run, if any, ends and returns its error.
func (q *ActionQuery) Wait() error {
	q.runMu.Lock()
	done := q.done
	q.runMu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	q.runMu.Lock()
	defer q.runMu.Unlock()
	return q.err
}

// Running reports whether a run is in progress.
func (q *ActionQuery) Running() bool {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	return q.runningLocked()
}

func (q *ActionQuery) runningLocked() bool {
	if q.done == nil {
		return false
	}
	select {
	case <-q.done:
		return false
	default:
		return true
	}
}

// Cancel cancels the current run. The run stops at its next suspension
// point: a prompt wait, an executor watching its context, or the next
// command boundary.
func (q *ActionQuery) Cancel() {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	if q.cancel != nil {
		q.logger.Debug("Cancelling action run.")
		q.cancel()
	}
}

// Undo stops the current run and walks the action backward, calling each
// executor's undo. With all unset only one command is undone.
func (q *ActionQuery) Undo(ctx context.Context, all bool) error {
	q.Cancel()
	_ = q.Wait()

	q.mu.Lock()
	q.iterator.SetDirection(status.Backward)
	for _, c := range q.action.Flatten() {
		c.SetStatus(status.Initialized)
	}
	q.mu.Unlock()

	q.logger.Info("↩️ Undoing action", "all", all)
	return q.Execute(ctx, ExecuteOptions{StepByStep: !all})
}

// Redo flips the action back to forward execution and resumes it unless a
// run is already in progress.
func (q *ActionQuery) Redo(ctx context.Context) error {
	q.mu.Lock()
	q.iterator.SetDirection(status.Forward)
	q.mu.Unlock()

	q.runMu.Lock()
	stepByStep := q.stepByStep
	q.runMu.Unlock()
	q.logger.Info("↪️ Redoing action")
	if err := q.Execute(ctx, ExecuteOptions{StepByStep: stepByStep}); err != nil && !errors.Is(err, ErrRunning) {
		return err
	}
	return nil
}

// Pause stops the run at the next command boundary.
func (q *ActionQuery) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.iterator.SetDirection(status.Pause)
	q.logger.Info("⏸️ Pausing action")
}

// Resume continues forward. A failed command under the cursor is run again.
func (q *ActionQuery) Resume(ctx context.Context, opts ExecuteOptions) error {
	q.mu.Lock()
	q.iterator.SetDirection(status.Forward)
	if c := q.iterator.At(); c != nil && c.Status().Failed() {
		q.iterator.Rewind()
	}
	q.mu.Unlock()

	if err := q.Execute(ctx, opts); err != nil && !errors.Is(err, ErrRunning) {
		return err
	}
	return nil
}

// InsertAction splices the action document doc as a new step named name
// under the step at parentPath. Its commands take part in the run from the
// next command boundary.
func (q *ActionQuery) InsertAction(ctx context.Context, parentPath, name string, doc map[string]any) (*tree.Action, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	sub, err := q.action.Insert(parentPath, name, doc)
	if err != nil {
		return sub, err
	}
	q.action.Flatten()
	q.logger.Debug("Inserted sub-action.", "parent", parentPath, "name", sub.Name(), "commands", len(sub.Commands()))
	q.sync(ctx)
	return sub, nil
}

// Snapshot returns a copy of the action's current document.
func (q *ActionQuery) Snapshot() map[string]any {
	q.mu.Lock()
	defer q.mu.Unlock()
	return tree.CopyDocument(q.action.Serialize())
}

// Status returns the derived status of the action.
func (q *ActionQuery) Status() status.Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.action.Status()
}

// HandleControl reacts to a remote control. It never blocks.
func (q *ActionQuery) HandleControl(c syncchannel.Control) {
	q.logger.Debug("Remote control received.", "control", c)
	switch c {
	case syncchannel.ControlCancel:
		q.Cancel()
	case syncchannel.ControlUndo:
		go func() {
			if err := q.Undo(q.ctx, false); err != nil {
				q.logger.Warn("Remote undo failed.", "error", err)
			}
		}()
	case syncchannel.ControlRedo:
		go func() {
			if err := q.Redo(q.ctx); err != nil {
				q.logger.Warn("Remote redo failed.", "error", err)
			}
		}()
	case syncchannel.ControlEdit:
		go func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			q.applyRemoteEdits(q.ctx)
		}()
	}
}
