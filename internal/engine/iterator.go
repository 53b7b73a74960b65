package engine

import (
	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// CommandIterator is a cursor over the flattened commands of an action.
// The command list is rebuilt on every move, so commands inserted or
// removed between moves are taken into account.
type CommandIterator struct {
	action    *tree.Action
	cursor    int
	direction status.Execution
	// moving is the last non-pause direction.
	moving status.Execution
	// current is the command under the cursor when the cursor was last set,
	// nil when the cursor points at no command.
	current *tree.Command
}

// NewCommandIterator returns an iterator positioned before the first
// command, moving forward.
func NewCommandIterator(action *tree.Action) *CommandIterator {
	return &CommandIterator{
		action:    action,
		cursor:    -1,
		direction: status.Forward,
		moving:    status.Forward,
	}
}

func (it *CommandIterator) Cursor() int { return it.cursor }

func (it *CommandIterator) Direction() status.Execution { return it.direction }

// Current returns the command under the cursor, or nil.
func (it *CommandIterator) Current() *tree.Command { return it.current }

// SetDirection changes the direction of the next moves. When the cursor
// points at a command and the movement flips, the cursor shifts by one so
// that the next move visits that command again in the new direction.
func (it *CommandIterator) SetDirection(d status.Execution) {
	it.direction = d
	if d == status.Pause || d == it.moving {
		return
	}
	it.moving = d
	byIndex := it.lookup()
	it.follow(byIndex)
	if it.current == nil {
		return
	}
	it.cursor -= step(d)
	it.current = byIndex[it.cursor]
}

// Next moves the cursor and returns the command it lands on. It returns
// false when paused or when the cursor leaves the command list.
func (it *CommandIterator) Next() (*tree.Command, bool) {
	if it.direction == status.Pause {
		return nil, false
	}
	byIndex := it.lookup()
	it.follow(byIndex)
	it.cursor = clamp(it.cursor+step(it.direction), len(byIndex))
	it.current = byIndex[it.cursor]
	return it.current, it.current != nil
}

// Rewind moves the cursor one position back against the current movement,
// so the next move returns the command under the cursor again.
func (it *CommandIterator) Rewind() {
	byIndex := it.lookup()
	it.follow(byIndex)
	it.cursor = clamp(it.cursor-step(it.moving), len(byIndex))
	it.current = byIndex[it.cursor]
}

// At returns the command under the cursor, looked up in the current command
// list.
func (it *CommandIterator) At() *tree.Command {
	byIndex := it.lookup()
	it.follow(byIndex)
	return byIndex[it.cursor]
}

// lookup flattens the action and indexes its commands by their index field.
func (it *CommandIterator) lookup() map[int]*tree.Command {
	commands := it.action.Flatten()
	byIndex := make(map[int]*tree.Command, len(commands))
	for _, c := range commands {
		byIndex[c.Index()] = c
	}
	return byIndex
}

// follow keeps the cursor on the current command when commands were
// renumbered since the last move.
func (it *CommandIterator) follow(byIndex map[int]*tree.Command) {
	if it.current == nil {
		return
	}
	if byIndex[it.current.Index()] == it.current {
		it.cursor = it.current.Index()
		return
	}
	it.current = nil
}

// clamp keeps the cursor within one position of either end of a list of n
// commands, so a move against the last direction lands on a command again.
func clamp(cursor, n int) int {
	return min(max(cursor, -1), n)
}

func step(d status.Execution) int {
	if d == status.Backward {
		return -1
	}
	return 1
}
