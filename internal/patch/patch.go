// Package patch computes and applies structural diffs between JSON-shaped
// documents. Diffs are RFC 6902 JSON Patch operation lists.
package patch

import (
	"bytes"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/goccy/go-json"
	"github.com/wI2L/jsondiff"
)

// Patch is an encoded JSON Patch. A nil Patch has no operations.
type Patch []byte

// Empty reports whether the patch has no operations.
func (p Patch) Empty() bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null"))
}

// Len returns the number of operations, or 0 if the patch is malformed.
func (p Patch) Len() int {
	if p.Empty() {
		return 0
	}
	var ops []json.RawMessage
	if err := json.Unmarshal(p, &ops); err != nil {
		return 0
	}
	return len(ops)
}

// Operations decodes the patch into plain values, ready to be sent as a
// message payload.
func (p Patch) Operations() ([]any, error) {
	if p.Empty() {
		return []any{}, nil
	}
	var ops []any
	if err := json.Unmarshal(p, &ops); err != nil {
		return nil, fmt.Errorf("decoding patch: %w", err)
	}
	return ops, nil
}

func (p Patch) String() string { return string(p) }

// Diff returns the patch transforming from into to. It returns a nil Patch
// when the documents are equal.
func Diff(from, to any) (Patch, error) {
	source, err := json.Marshal(from)
	if err != nil {
		return nil, fmt.Errorf("encoding source document: %w", err)
	}
	target, err := json.Marshal(to)
	if err != nil {
		return nil, fmt.Errorf("encoding target document: %w", err)
	}
	ops, err := jsondiff.CompareJSON(source, target)
	if err != nil {
		return nil, fmt.Errorf("comparing documents: %w", err)
	}
	if len(ops) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %w", err)
	}
	return Patch(encoded), nil
}

// Apply applies p to doc and returns the patched document. doc is not
// modified.
func Apply(doc any, p Patch) (map[string]any, error) {
	original, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	patched := original
	if !p.Empty() {
		ops, err := jsonpatch.DecodePatch(p)
		if err != nil {
			return nil, fmt.Errorf("decoding patch: %w", err)
		}
		patched, err = ops.Apply(original)
		if err != nil {
			return nil, fmt.Errorf("applying patch: %w", err)
		}
	}
	out := map[string]any{}
	if err := json.Unmarshal(patched, &out); err != nil {
		return nil, fmt.Errorf("decoding patched document: %w", err)
	}
	return out, nil
}

// Decode builds a Patch from a received payload: raw bytes, a JSON string or
// an already decoded list of operations.
func Decode(payload any) (Patch, error) {
	switch value := payload.(type) {
	case nil:
		return nil, nil
	case Patch:
		return value, nil
	case []byte:
		return Patch(value), nil
	case string:
		return Patch(value), nil
	case []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding patch payload: %w", err)
		}
		return Patch(encoded), nil
	}
	return nil, fmt.Errorf("unsupported patch payload of type %T", payload)
}

// Normalize round-trips v through JSON so it only holds JSON value shapes
// (map[string]any, []any, float64, string, bool, nil).
func Normalize(v any) (any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}
