package testutil

import (
	"testing"

	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/tree"
	"github.com/stretchr/testify/require"
)

// Command returns the command at the dotted path, failing the test when
// there is none.
func Command(t *testing.T, result *HarnessResult, path string) *tree.Command {
	t.Helper()
	require.NotNil(t, result.Action, "the action was not built: %v", result.Err)
	n, err := result.Action.Find(path)
	require.NoError(t, err)
	cmd, ok := n.(*tree.Command)
	require.True(t, ok, "%s is a step, not a command", path)
	return cmd
}

// AssertCommandStatus checks the status of the command at path.
func AssertCommandStatus(t *testing.T, result *HarnessResult, path string, expected status.Status) {
	t.Helper()
	require.Equal(t, expected, Command(t, result, path).Status(), "status of %s", path)
}

// AssertCommandRan checks that the command at path completed.
func AssertCommandRan(t *testing.T, result *HarnessResult, path string) {
	t.Helper()
	AssertCommandStatus(t, result, path, status.Completed)
}

// Output returns the value of an output socket.
func Output(t *testing.T, result *HarnessResult, path, socket string) any {
	t.Helper()
	s := Command(t, result, path).Output(socket)
	require.NotNil(t, s, "%s has no output %q", path, socket)
	return s.Value()
}
