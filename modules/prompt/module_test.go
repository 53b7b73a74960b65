package prompt

import (
	"testing"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	testCases := []struct {
		name     string
		inputs   string
		expected string
		logs     string
	}{
		{
			name:     "answer given up front",
			inputs:   "{question: colour, value: blue}",
			expected: "blue",
			logs:     "Answer received",
		},
		{
			name:     "batch mode continues with an empty answer",
			inputs:   "{question: colour}",
			expected: "",
			logs:     "No answer given",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := testutil.Harness{
				Files: map[string]string{"ask.yml": `
ask:
  steps:
    main:
      commands:
        colour:
          definition: prompt
          inputs: ` + tc.inputs + `
`},
				Action:  "ask",
				Modules: []registry.Module{&Module{}},
			}.Run(t)

			require.NoError(t, result.Err)
			testutil.AssertCommandRan(t, result, "main.colour")
			assert.Equal(t, tc.expected, testutil.Output(t, result, "main.colour", "answer"))
			assert.False(t, testutil.Command(t, result, "main.colour").AskUser())
			assert.Contains(t, result.LogOutput, tc.logs)
		})
	}
}
