package type_system_test

import (
	"context"
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

// typedModule registers "typed", whose input "value" has the given type and
// is passed through to the Any output "seen".
func typedModule(typ sockettype.Type) *testutil.SimpleModule {
	return &testutil.SimpleModule{
		Name: "typed",
		Spec: registry.Spec{
			Inputs:  []tree.SocketSpec{{Name: "value", Type: typ}},
			Outputs: []tree.SocketSpec{{Name: "seen", Type: sockettype.Any}},
		},
		Executor: registry.ExecutorFunc(func(_ context.Context, call *registry.Call) error {
			call.Outputs["seen"] = call.Inputs["value"]
			return nil
		}),
	}
}

func runTyped(t *testing.T, typ sockettype.Type, value string) *testutil.HarnessResult {
	t.Helper()
	return testutil.Harness{
		Files: map[string]string{"typed.yml": `
typed:
  steps:
    main:
      commands:
        check:
          definition: typed
          inputs:
            value: ` + value + `
`},
		Action:  "typed",
		Modules: []registry.Module{typedModule(typ)},
	}.Run(t)
}

func TestTypeSystem_ValuesAreCastOnTheWayIn(t *testing.T) {
	testCases := []struct {
		name     string
		typ      sockettype.Type
		value    string
		expected any
	}{
		{name: "numeric string to int", typ: sockettype.Int, value: `"42"`, expected: 42},
		{name: "int to float", typ: sockettype.Float, value: "2", expected: 2.0},
		{name: "number to string", typ: sockettype.String, value: "7", expected: "7"},
		{name: "bool string to bool", typ: sockettype.Bool, value: `"true"`, expected: true},
		{name: "select option", typ: sockettype.Select{Options: []string{"low", "high"}}, value: "high", expected: "high"},
		{name: "list elements", typ: sockettype.List{Elem: sockettype.Int}, value: `[1, "2"]`, expected: []any{1, 2}},
		{name: "null takes the default", typ: sockettype.Int, value: "null", expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := runTyped(t, tc.typ, tc.value)

			require.NoError(t, result.Err)
			assert.Equal(t, tc.expected, testutil.Output(t, result, "main.check", "seen"))
		})
	}
}

func TestTypeSystem_CastFailureMakesTheCommandInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		typ   sockettype.Type
		value string
	}{
		{name: "word to int", typ: sockettype.Int, value: "abc"},
		{name: "fraction to int", typ: sockettype.Int, value: "1.5"},
		{name: "unknown select option", typ: sockettype.Select{Options: []string{"low", "high"}}, value: "medium"},
		{name: "mapping to string", typ: sockettype.String, value: "{a: 1}"},
		{name: "bad list element", typ: sockettype.List{Elem: sockettype.Bool}, value: "[true, maybe]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := runTyped(t, tc.typ, tc.value)

			require.ErrorIs(t, result.Err, engine.ErrFailed)
			testutil.AssertCommandStatus(t, result, "main.check", status.Invalid)
			assert.Contains(t, result.LogOutput, sockettype.ErrCast.Error())
		})
	}
}
