package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/testutil"
	"github.com/specialistvlad/actiongrid/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PassesValuesBetweenCommands(t *testing.T) {
	// Arrange
	h := testutil.Harness{
		Files: map[string]string{"share.yml": `
share:
  steps:
    main:
      commands:
        put:
          definition: store
          inputs:
            operation: set
            key: colour
            value: blue
      steps:
        nested:
          commands:
            take:
              definition: store
              inputs:
                operation: get
                key: colour
`},
		Action:  "share",
		Modules: []registry.Module{&Module{}},
	}

	// Act
	result := h.Run(t)

	// Assert
	require.NoError(t, result.Err)
	testutil.AssertCommandRan(t, result, "main.nested.take")
	assert.Equal(t, "blue", testutil.Output(t, result, "main.nested.take", "value"), "reads fall back to enclosing steps")
}

func TestStore_UnknownKeyOutputsNothing(t *testing.T) {
	result := testutil.Harness{
		Files: map[string]string{"share.yml": `
share:
  steps:
    main:
      commands:
        take:
          definition: store
          inputs:
            operation: get
            key: colour
`},
		Action:  "share",
		Modules: []registry.Module{&Module{}},
	}.Run(t)

	require.NoError(t, result.Err)
	assert.Nil(t, testutil.Output(t, result, "main.take", "value"))
	assert.Contains(t, result.LogOutput, "Key not found in store.")
}

func TestStore_UndoRemovesTheKey(t *testing.T) {
	step := tree.NewStep("main")
	call := &registry.Call{
		Inputs:  map[string]any{"operation": OperationSet, "key": "colour", "value": "blue"},
		Outputs: map[string]any{},
		Store:   step.Store(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	ctx := context.Background()

	require.NoError(t, Executor{}.Execute(ctx, call))
	_, ok := step.Store().Get("colour")
	require.True(t, ok)

	require.NoError(t, Executor{}.Undo(ctx, call))
	_, ok = step.Store().Get("colour")
	assert.False(t, ok)
}

func TestStore_EmptyKeyIsAnError(t *testing.T) {
	call := &registry.Call{
		Inputs:  map[string]any{"operation": OperationGet, "key": ""},
		Outputs: map[string]any{},
		Store:   tree.NewStep("main").Store(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	assert.ErrorContains(t, Executor{}.Execute(context.Background(), call), "empty key")
}
