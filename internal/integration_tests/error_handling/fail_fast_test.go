package error_handling_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/actiongrid/internal/engine"
	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/status"
	"github.com/specialistvlad/actiongrid/internal/testutil"
	"github.com/specialistvlad/actiongrid/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingModule registers "count", which counts its executions, and
// "boom", which always fails.
type countingModule struct {
	runs atomic.Int32
}

func (m *countingModule) Register(r *registry.Registry) {
	r.RegisterExecutor("count", registry.Spec{}, registry.ExecutorFunc(func(context.Context, *registry.Call) error {
		m.runs.Add(1)
		return nil
	}))
	r.RegisterExecutor("boom", registry.Spec{
		Inputs: []tree.SocketSpec{{Name: "reason", Type: sockettype.String, Value: "boom"}},
	}, registry.ExecutorFunc(func(_ context.Context, call *registry.Call) error {
		return errors.New(call.Inputs["reason"].(string))
	}))
}

// Test for: A failing command stops the run and leaves later commands untouched.
func TestErrorHandling_CommandFailureTriggersFastFail(t *testing.T) {
	// Arrange
	counter := &countingModule{}
	h := testutil.Harness{
		Files: map[string]string{"job.yml": `
job:
  steps:
    first:
      commands:
        a: {definition: count}
        b:
          definition: boom
          inputs:
            reason: disk full
    second:
      commands:
        c: {definition: count}
`},
		Action:  "job",
		Modules: []registry.Module{counter},
	}

	// Act
	result := h.Run(t)

	// Assert
	require.ErrorIs(t, result.Err, engine.ErrFailed)
	testutil.AssertCommandRan(t, result, "first.a")
	testutil.AssertCommandStatus(t, result, "first.b", status.Error)
	testutil.AssertCommandStatus(t, result, "second.c", status.Initialized)
	assert.Equal(t, int32(1), counter.runs.Load(), "nothing runs after the failure")

	logs := testutil.Command(t, result, "first.b").Logs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "disk full", logs[len(logs)-1].Message)
	assert.Contains(t, result.LogOutput, "Command failed.")
}

func TestErrorHandling_UnknownDefinitionIsInvalid(t *testing.T) {
	counter := &countingModule{}
	result := testutil.Harness{
		Files: map[string]string{"job.yml": `
job:
  steps:
    main:
      commands:
        a: {definition: count}
        b: {definition: does_not_exist}
`},
		Action:  "job",
		Modules: []registry.Module{counter},
	}.Run(t)

	require.ErrorIs(t, result.Err, engine.ErrFailed)
	testutil.AssertCommandStatus(t, result, "main.b", status.Invalid)
}

func TestErrorHandling_MissingRequiredContextIsInvalid(t *testing.T) {
	needsProject := &testutil.SimpleModule{
		Name: "publish",
		Spec: registry.Spec{RequiredContext: []string{"project"}},
		Executor: registry.ExecutorFunc(func(context.Context, *registry.Call) error {
			return nil
		}),
	}
	files := map[string]string{"job.yml": `
job:
  steps:
    main:
      commands:
        send: {definition: publish}
`}

	result := testutil.Harness{Files: files, Action: "job", Modules: []registry.Module{needsProject}}.Run(t)
	require.ErrorIs(t, result.Err, engine.ErrFailed)
	testutil.AssertCommandStatus(t, result, "main.send", status.Invalid)
	assert.Contains(t, result.LogOutput, "missing required context [project]")

	result = testutil.Harness{
		Files:    files,
		Action:   "job",
		Metadata: map[string]any{"project": "feature"},
		Modules:  []registry.Module{needsProject},
	}.Run(t)
	require.NoError(t, result.Err)
	testutil.AssertCommandRan(t, result, "main.send")
}

func TestErrorHandling_UnresolvedConnectionIsInvalid(t *testing.T) {
	counter := &countingModule{}
	echo := &testutil.SimpleModule{
		Name: "echo",
		Spec: registry.Spec{Inputs: []tree.SocketSpec{{Name: "in", Type: sockettype.Any}}},
		Executor: registry.ExecutorFunc(func(context.Context, *registry.Call) error {
			return nil
		}),
	}
	result := testutil.Harness{
		Files: map[string]string{"job.yml": `
job:
  steps:
    main:
      commands:
        read:
          definition: echo
          inputs:
            in: !connect-out nowhere.nothing.value
`},
		Action:  "job",
		Modules: []registry.Module{counter, echo},
	}.Run(t)

	require.ErrorIs(t, result.Err, engine.ErrFailed)
	testutil.AssertCommandStatus(t, result, "main.read", status.Invalid)
	assert.Contains(t, result.LogOutput, tree.ErrConnection.Error())
}

func TestErrorHandling_MissingActionIsReported(t *testing.T) {
	result := testutil.Harness{
		Files:   map[string]string{"other.yml": "other: {}\n"},
		Action:  "job",
		Modules: []registry.Module{&testutil.NoOpModule{}},
	}.Run(t)

	require.Error(t, result.Err)
	assert.Nil(t, result.Action)
}
