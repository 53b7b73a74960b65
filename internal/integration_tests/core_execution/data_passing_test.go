package core_execution_test

import (
	"context"
	"sync"
	"testing"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/testutil"
	"github.com/specialistvlad/actiongrid/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyModule registers a "source" executor emitting a fixed value and a
// "spy" executor capturing what reaches its input.
type spyModule struct {
	emit any

	mu       sync.Mutex
	captured []any
}

func (m *spyModule) Register(r *registry.Registry) {
	r.RegisterExecutor("source", registry.Spec{
		Outputs: []tree.SocketSpec{{Name: "data", Type: sockettype.Any}},
	}, registry.ExecutorFunc(func(_ context.Context, call *registry.Call) error {
		call.Outputs["data"] = m.emit
		return nil
	}))
	r.RegisterExecutor("spy", registry.Spec{
		Inputs: []tree.SocketSpec{{Name: "input", Type: sockettype.Any}},
	}, registry.ExecutorFunc(func(_ context.Context, call *registry.Call) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.captured = append(m.captured, call.Inputs["input"])
		return nil
	}))
}

func (m *spyModule) values() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.captured...)
}

// Test for: Complex data (objects, lists) passes correctly between steps.
func TestCoreExecution_ComplexDataPassing(t *testing.T) {
	// Arrange
	data := map[string]any{
		"name":  "shot_010",
		"tags":  []any{"fx", "lighting"},
		"range": map[string]any{"start": 1001, "end": 1100},
	}
	spy := &spyModule{emit: data}
	h := testutil.Harness{
		Files: map[string]string{"pass.yml": `
pass:
  steps:
    produce:
      commands:
        make:
          definition: source
    consume:
      commands:
        direct:
          definition: spy
          inputs:
            input: !connect-out produce.make.data
        chained:
          definition: spy
          inputs:
            input: !connect-in consume.direct.input
`},
		Action:  "pass",
		Modules: []registry.Module{spy},
	}

	// Act
	result := h.Run(t)

	// Assert
	require.NoError(t, result.Err)
	testutil.AssertCommandRan(t, result, "consume.direct")
	testutil.AssertCommandRan(t, result, "consume.chained")
	assert.Equal(t, []any{data, data}, spy.values(), "both the output and the forwarded input carry the value")
}

func TestCoreExecution_InheritedDefinitionsRunLikeInlineOnes(t *testing.T) {
	spy := &spyModule{emit: "frame"}
	h := testutil.Harness{
		Files: map[string]string{
			"library/produce.yml": `
commands:
  make:
    definition: source
`,
			"pass.yml": `
pass:
  steps:
    produce: !inherit
      parent: produce
      category: library
    consume:
      commands:
        show:
          definition: spy
          inputs:
            input: !connect-out produce.make.data
`,
		},
		Action:  "pass",
		Modules: []registry.Module{spy},
	}

	result := h.Run(t)

	require.NoError(t, result.Err)
	assert.Empty(t, result.Diagnostics)
	testutil.AssertCommandRan(t, result, "produce.make")
	assert.Equal(t, []any{"frame"}, spy.values())
}

func TestCoreExecution_TaskOverlayChangesTheRun(t *testing.T) {
	spy := &spyModule{}
	files := map[string]string{"review.yml": `
review:
  steps:
    main:
      commands:
        show:
          definition: spy
          inputs:
            input: generic
  tasks:
    lighting:
      steps:
        main:
          commands:
            show:
              inputs:
                input: lighting
            extra:
              definition: spy
              inputs:
                input: only for lighting
`}

	result := testutil.Harness{Files: files, Action: "review", TaskType: "lighting", Modules: []registry.Module{spy}}.Run(t)
	require.NoError(t, result.Err)
	assert.Equal(t, []any{"lighting", "only for lighting"}, spy.values())

	other := &spyModule{}
	result = testutil.Harness{Files: files, Action: "review", TaskType: "modeling", Modules: []registry.Module{other}}.Run(t)
	require.NoError(t, result.Err)
	assert.Equal(t, []any{"generic"}, other.values())
}
