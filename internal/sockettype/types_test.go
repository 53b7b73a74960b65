package sockettype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCast(t *testing.T) {
	testCases := []struct {
		name      string
		typ       Type
		input     any
		expected  any
		expectErr bool
	}{
		{name: "string passthrough", typ: String, input: "hello", expected: "hello"},
		{name: "number to string", typ: String, input: 3, expected: "3"},
		{name: "string to int", typ: Int, input: "42", expected: 42},
		{name: "json number to int", typ: Int, input: float64(7), expected: 7},
		{name: "int to float", typ: Float, input: 2, expected: 2.0},
		{name: "string to bool", typ: Bool, input: "true", expected: true},
		{name: "nil uses default", typ: Int, input: nil, expected: 0},
		{name: "text", typ: Text, input: "a\nb", expected: "a\nb"},
		{name: "any keeps value", typ: Any, input: map[string]any{"a": 1}, expected: map[string]any{"a": 1}},
		{name: "select option", typ: Select{Options: []string{"low", "high"}}, input: "high", expected: "high"},
		{name: "ranged snaps to step", typ: Ranged{Min: 0, Max: 10, Step: 5}, input: 6, expected: 5.0},
		{name: "ranged integer", typ: Ranged{Min: 0, Max: 100, Integer: true}, input: "40", expected: 40},
		{name: "array", typ: Array{Elem: Int, Len: 2}, input: []any{"1", 2}, expected: []any{1, 2}},
		{name: "list of strings", typ: List{Elem: String}, input: []string{"a", "b"}, expected: []any{"a", "b"}},
		{name: "path is cleaned", typ: Path{}, input: "/tmp//scene/../shot.exr", expected: "/tmp/shot.exr"},
		{name: "path extension", typ: Path{Extensions: []string{".EXR"}}, input: "/tmp/shot.exr", expected: "/tmp/shot.exr"},

		{name: "error - word to int", typ: Int, input: "many", expectErr: true},
		{name: "error - fractional int", typ: Int, input: 1.5, expectErr: true},
		{name: "error - object to string", typ: String, input: map[string]any{"a": 1}, expectErr: true},
		{name: "error - select unknown option", typ: Select{Options: []string{"low"}}, input: "mid", expectErr: true},
		{name: "error - ranged out of bounds", typ: Ranged{Min: 0, Max: 1}, input: 2, expectErr: true},
		{name: "error - array length", typ: Array{Elem: Int, Len: 3}, input: []any{1, 2}, expectErr: true},
		{name: "error - list of scalars", typ: List{Elem: Int}, input: "1,2", expectErr: true},
		{name: "error - list element", typ: List{Elem: Int}, input: []any{1, "x"}, expectErr: true},
		{name: "error - path extension", typ: Path{Extensions: []string{".exr"}}, input: "/tmp/shot.png", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.typ.Cast(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrCast)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "", String.Default())
	assert.Equal(t, "low", Select{Options: []string{"low", "high"}}.Default())
	assert.Equal(t, 3, Ranged{Min: 3, Max: 9, Integer: true}.Default())
	assert.Equal(t, []any{false, false}, Array{Elem: Bool, Len: 2}.Default())
	assert.Equal(t, []any{}, List{Elem: Int}.Default())
	assert.Nil(t, Any.Default())
}

func TestFromDocument_RoundTrip(t *testing.T) {
	types := []Type{
		String, Int, Float, Bool, Text, Any,
		Select{Options: []string{"a", "b"}},
		Ranged{Min: 1, Max: 5, Step: 0.5},
		Array{Elem: Float, Len: 3},
		List{Elem: Select{Options: []string{"x"}}},
		Path{Extensions: []string{".usd"}},
	}

	for _, typ := range types {
		t.Run(string(typ.Kind()), func(t *testing.T) {
			got, err := FromDocument(typ.Document())
			require.NoError(t, err)
			assert.Equal(t, typ, got)
		})
	}
}

func TestFromDocument_Shorthand(t *testing.T) {
	typ, err := FromDocument("int")
	require.NoError(t, err)
	assert.Equal(t, Int, typ)

	_, err = FromDocument("matrix")
	require.Error(t, err)
}
