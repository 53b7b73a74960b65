package tree

import (
	"github.com/specialistvlad/actiongrid/internal/sockettype"
)

type fakeCatalog map[string][2][]SocketSpec

func (f fakeCatalog) Blueprint(definition string) ([]SocketSpec, []SocketSpec, bool) {
	spec, ok := f[definition]
	return spec[0], spec[1], ok
}

var testCatalog = fakeCatalog{
	"print": {
		{{Name: "message", Type: sockettype.String}},
		{{Name: "printed", Type: sockettype.String}},
	},
	"count": {
		{{Name: "start", Type: sockettype.Int}},
		{{Name: "total", Type: sockettype.Int}},
	},
}

// renderDocument is a small action: two steps, three commands, one
// connection.
func renderDocument() map[string]any {
	return map[string]any{
		"steps": map[string]any{
			"prepare": map[string]any{
				"index": 0,
				"commands": map[string]any{
					"count_frames": map[string]any{
						"index":      0,
						"definition": "count",
						"inputs": map[string]any{
							"start": map[string]any{"value": 10},
						},
					},
				},
			},
			"render": map[string]any{
				"index": 1,
				"commands": map[string]any{
					"announce": map[string]any{
						"index":      0,
						"definition": "print",
						"inputs": map[string]any{
							"message": map[string]any{"value": map[string]any{"connection": "prepare.count_frames.outputs.total"}},
						},
					},
					"done": map[string]any{
						"index":      1,
						"definition": "print",
					},
				},
			},
		},
	}
}

func buildRenderAction() *Action {
	a, err := FromDocument("render_shot", renderDocument(), map[string]any{"project": "demo"}, testCatalog)
	if err != nil {
		panic(err)
	}
	return a
}
