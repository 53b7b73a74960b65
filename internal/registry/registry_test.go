package registry

import (
	"context"
	"testing"

	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopExecutor struct{}

func (noopExecutor) Execute(context.Context, *Call) error { return nil }
func (noopExecutor) Undo(context.Context, *Call) error    { return nil }

type testModule struct{ spec Spec }

func (m testModule) Register(r *Registry) {
	r.RegisterExecutor("noop", m.spec, noopExecutor{})
}

func TestRegisterExecutor_PanicsOnDuplicate(t *testing.T) {
	r := New()
	r.RegisterExecutor("noop", Spec{}, noopExecutor{})

	assert.Panics(t, func() {
		r.RegisterExecutor("noop", Spec{}, noopExecutor{})
	})
}

func TestLookup(t *testing.T) {
	r := New()
	r.RegisterExecutor("noop", Spec{}, noopExecutor{})

	reg, err := r.Lookup("noop")
	require.NoError(t, err)
	_, canUndo := reg.Executor.(Undoer)
	assert.True(t, canUndo)

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownDefinition)
}

func TestBlueprint_BuildsCommandSockets(t *testing.T) {
	r := New()
	r.RegisterExecutor("noop", Spec{
		Inputs:  []tree.SocketSpec{{Name: "count", Type: sockettype.Int, Value: 3}},
		Outputs: []tree.SocketSpec{{Name: "result", Type: sockettype.String}},
	}, noopExecutor{})

	c := tree.NewCommand("step_one", "noop", r)

	require.NotNil(t, c.Input("count"))
	assert.Equal(t, 3, c.Input("count").Value())
	assert.Equal(t, "", c.Output("result").Value())
}

func TestMissingContext(t *testing.T) {
	r := New()
	r.RegisterExecutor("noop", Spec{RequiredContext: []string{"project", "task"}}, noopExecutor{})

	assert.Equal(t, []string{"task"}, r.MissingContext("noop", map[string]any{"project": "demo", "task": ""}))
	assert.Empty(t, r.MissingContext("noop", map[string]any{"project": "demo", "task": "comp"}))
}

func TestLoad_ValidatesSpecs(t *testing.T) {
	testCases := []struct {
		name        string
		spec        Spec
		expectedErr string
	}{
		{
			name: "valid spec",
			spec: Spec{Inputs: []tree.SocketSpec{{Name: "mode", Type: sockettype.Select{Options: []string{"a", "b"}}, Value: "b"}}},
		},
		{
			name:        "error - duplicate socket",
			spec:        Spec{Inputs: []tree.SocketSpec{{Name: "a"}, {Name: "A"}}},
			expectedErr: "duplicate input socket 'a'",
		},
		{
			name:        "error - bad initial value",
			spec:        Spec{Outputs: []tree.SocketSpec{{Name: "n", Type: sockettype.Int, Value: "many"}}},
			expectedErr: "initial value does not fit its type",
		},
		{
			name:        "error - empty name",
			spec:        Spec{Inputs: []tree.SocketSpec{{Name: "!!"}}},
			expectedErr: "socket with empty name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().Load(context.Background(), testModule{spec: tc.spec})
			if tc.expectedErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}
