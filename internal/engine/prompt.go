package engine

import (
	"context"
	"slices"

	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// promptCommands suspends the run until the remote observer has answered
// the prompt of lead and of the commands right after it that also ask for
// input. The tree lock is released while waiting.
func (q *ActionQuery) promptCommands(ctx context.Context, lead *tree.Command) error {
	logger := q.logger.With("command", lead.Path())
	if q.channel == nil {
		logger.Warn("Command asks for user input but no observer is attached, continuing without it.")
		lead.SetAskUser(false)
		return nil
	}
	q.metrics.Prompts.Inc()

	var affected []*tree.Command
	finish := func() {
		for _, c := range affected {
			c.SetAskUser(false)
			c.SetStatus(status.Initialized)
		}
	}

	for {
		batch := q.promptBatch(ctx, lead)
		if len(batch) == 0 {
			break
		}
		for _, c := range batch {
			c.SetStatus(status.WaitingForResponse)
			c.SetHidden(false)
			if !slices.Contains(affected, c) {
				affected = append(affected, c)
			}
		}

		logger.Info("🙋 Waiting for user input", "commands", len(batch))
		if err := q.channel.Exchange(ctx, &q.mu); err != nil {
			finish()
			if ctx.Err() != nil {
				return err
			}
			logger.Warn("Prompt could not be sent, continuing without user input.", "error", err)
			return nil
		}
		logger.Debug("User input received.")

		for _, c := range batch {
			q.setup(ctx, c)
		}
		if !lead.AskUser() {
			break
		}
	}

	finish()
	q.sync(ctx)
	return nil
}

// promptBatch returns lead and the commands following it that ask for
// input, re-evaluating each follower's setup first.
func (q *ActionQuery) promptBatch(ctx context.Context, lead *tree.Command) []*tree.Command {
	commands := q.action.Flatten()
	start := slices.Index(commands, lead)
	if start < 0 || !lead.AskUser() {
		return nil
	}
	batch := []*tree.Command{lead}
	for _, c := range commands[start+1:] {
		if !q.setup(ctx, c) || !c.AskUser() {
			break
		}
		batch = append(batch, c)
	}
	return batch
}
