// internal/connection/path_test.go
package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
		expected  Connection
	}{
		{
			name:     "nested children",
			raw:      "pre_action.build_path.outputs.path",
			expected: New([]string{"pre_action", "build_path"}, Outputs, "path"),
		},
		{
			name:     "single child",
			raw:      "cmd.inputs.value",
			expected: New([]string{"cmd"}, Inputs, "value"),
		},
		{
			name:     "surrounding whitespace",
			raw:      "  a.b.inputs.x ",
			expected: New([]string{"a", "b"}, Inputs, "x"),
		},
		{
			name:      "error - empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - empty segment",
			raw:       "a..inputs.x",
			expectErr: true,
		},
		{
			name:      "error - missing direction",
			raw:       "a.b.c",
			expectErr: true,
		},
		{
			name:      "error - too short",
			raw:       "inputs.x",
			expectErr: true,
		},
		{
			name:      "error - invalid character",
			raw:       "a/b.inputs.x",
			expectErr: true,
		},
		{
			name:      "error - just hyphen",
			raw:       "a.-.inputs.x",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(c), "expected %s, got %s", tc.expected, c)
		})
	}
}

func TestParseShorthand(t *testing.T) {
	c, err := ParseShorthand("step.cmd.value", Outputs)
	require.NoError(t, err)
	assert.Equal(t, "step.cmd.outputs.value", c.String())

	c, err = ParseShorthand("step.cmd.inputs.value", Outputs)
	require.NoError(t, err)
	assert.Equal(t, "step.cmd.inputs.value", c.String(), "an explicit direction is kept")

	_, err = ParseShorthand("value", Inputs)
	require.Error(t, err)
}

func TestConnection_RoundTrip(t *testing.T) {
	for _, raw := range []string{"a.inputs.b", "x.y.z.outputs.file_path", "step-1.cmd.outputs.v"} {
		t.Run(raw, func(t *testing.T) {
			c, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, c.String())

			back, ok, err := FromDocument(c.Document())
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, c.Equal(back))
		})
	}
}

func TestFromDocument_IgnoresPlainValues(t *testing.T) {
	for _, v := range []any{"a.inputs.b", 3, map[string]any{"connection": "a.inputs.b", "other": 1}, nil} {
		_, ok, err := FromDocument(v)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestNew_CopiesPath(t *testing.T) {
	path := []string{"a", "b"}
	c := New(path, Inputs, "x")
	path[0] = "changed"
	assert.Equal(t, "a.b.inputs.x", c.String())
}
