// Package engine runs actions.
//
// An ActionQuery owns one action tree for the duration of its runs. Its run
// loop pulls commands from a CommandIterator, dispatches them to the
// executors of the registry one at a time, suspends on user prompts and
// pushes every change to the remote observer through a sync channel.
//
// The direction of the iterator decides what a run does: FORWARD executes
// commands in index order, BACKWARD walks back calling each executor's undo,
// and PAUSE stops the loop at the next command boundary.
package engine
