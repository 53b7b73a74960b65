package sockettype

import (
	"fmt"
)

// FromDocument rebuilds a Type from the output of Type.Document. A bare kind
// name is accepted as shorthand for the scalar variants.
func FromDocument(v any) (Type, error) {
	switch doc := v.(type) {
	case nil:
		return Any, nil
	case string:
		return fromKind(Kind(doc), nil)
	case map[string]any:
		kind, _ := doc["kind"].(string)
		return fromKind(Kind(kind), doc)
	}
	return nil, fmt.Errorf("invalid socket type document of type %T", v)
}

func fromKind(kind Kind, doc map[string]any) (Type, error) {
	switch kind {
	case KindString:
		return String, nil
	case KindInt:
		return Int, nil
	case KindFloat:
		return Float, nil
	case KindBool:
		return Bool, nil
	case KindText:
		return Text, nil
	case KindAny, "":
		return Any, nil
	case KindSelect:
		options, err := stringList(doc["options"])
		if err != nil {
			return nil, fmt.Errorf("select options: %w", err)
		}
		return Select{Options: options}, nil
	case KindRanged:
		r := Ranged{}
		for key, dst := range map[string]*float64{"min": &r.Min, "max": &r.Max, "step": &r.Step} {
			if raw, ok := doc[key]; ok {
				f, err := Float.Cast(raw)
				if err != nil {
					return nil, fmt.Errorf("ranged %s: %w", key, err)
				}
				*dst = f.(float64)
			}
		}
		if raw, ok := doc["integer"]; ok {
			b, err := Bool.Cast(raw)
			if err != nil {
				return nil, fmt.Errorf("ranged integer: %w", err)
			}
			r.Integer = b.(bool)
		}
		return r, nil
	case KindArray:
		elem, err := FromDocument(doc["elem"])
		if err != nil {
			return nil, err
		}
		n, err := Int.Cast(doc["len"])
		if err != nil {
			return nil, fmt.Errorf("array len: %w", err)
		}
		return Array{Elem: elem, Len: n.(int)}, nil
	case KindList:
		elem, err := FromDocument(doc["elem"])
		if err != nil {
			return nil, err
		}
		return List{Elem: elem}, nil
	case KindPath:
		exts, err := stringList(doc["extensions"])
		if err != nil {
			return nil, fmt.Errorf("path extensions: %w", err)
		}
		return Path{Extensions: exts}, nil
	}
	return nil, fmt.Errorf("unknown socket type kind %q", kind)
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := List{Elem: String}.Cast(v)
	if err != nil {
		return nil, err
	}
	items := raw.([]any)
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.(string)
	}
	return out, nil
}
