package tree

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/actiongrid/internal/sockettype"
)

func fieldError(key string, err error) error {
	return fmt.Errorf("%w: field %q: %v", ErrInvalidDocument, key, err)
}

func stringField(doc map[string]any, key string) (string, bool, error) {
	raw, ok := doc[key]
	if !ok {
		return "", false, nil
	}
	v, err := sockettype.String.Cast(raw)
	if err != nil {
		return "", false, fieldError(key, err)
	}
	return v.(string), true, nil
}

func boolField(doc map[string]any, key string) (bool, bool, error) {
	raw, ok := doc[key]
	if !ok {
		return false, false, nil
	}
	v, err := sockettype.Bool.Cast(raw)
	if err != nil {
		return false, false, fieldError(key, err)
	}
	return v.(bool), true, nil
}

func intField(doc map[string]any, key string) (int, bool, error) {
	raw, ok := doc[key]
	if !ok {
		return 0, false, nil
	}
	v, err := sockettype.Int.Cast(raw)
	if err != nil {
		return 0, false, fieldError(key, err)
	}
	return v.(int), true, nil
}

func mapField(doc map[string]any, key string) (map[string]any, bool, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	m, isMap := raw.(map[string]any)
	if !isMap {
		return nil, false, fieldError(key, fmt.Errorf("expected an object, got %T", raw))
	}
	return m, true, nil
}

func stringListField(doc map[string]any, key string) ([]string, bool, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	v, err := sockettype.List{Elem: sockettype.String}.Cast(raw)
	if err != nil {
		return nil, false, fieldError(key, err)
	}
	items := v.([]any)
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.(string)
	}
	return out, true, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// DeepCopy copies nested maps and slices of a document. Leaves are shared.
func DeepCopy(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = DeepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = DeepCopy(item)
		}
		return out
	default:
		return v
	}
}

// CopyDocument deep copies a document map. A nil map yields an empty one.
func CopyDocument(doc map[string]any) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	return DeepCopy(doc).(map[string]any)
}
