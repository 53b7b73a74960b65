package tree

import (
	"fmt"

	"github.com/specialistvlad/actiongrid/internal/patch"
)

// ApplyPatch applies a structural patch to the node's serialized document
// and deserializes the result back into the node.
func ApplyPatch(n Node, p patch.Patch) error {
	if p.Empty() {
		return nil
	}
	doc, err := patch.Apply(n.Serialize(), p)
	if err != nil {
		return fmt.Errorf("patching %q: %w", n.Name(), err)
	}
	return n.Deserialize(doc, false)
}

// Diff returns the patch that turns from into the node's current document.
func Diff(from map[string]any, n Node) (patch.Patch, error) {
	return patch.Diff(from, n.Serialize())
}
