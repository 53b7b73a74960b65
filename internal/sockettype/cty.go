package sockettype

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty converts a Go value into its cty equivalent. Plain JSON shapes are
// handled directly; anything else goes through gocty's implied types.
func ToCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch value := v.(type) {
	case cty.Value:
		return value, nil
	case string:
		return cty.StringVal(value), nil
	case bool:
		return cty.BoolVal(value), nil
	case int:
		return cty.NumberIntVal(int64(value)), nil
	case int64:
		return cty.NumberIntVal(value), nil
	case float64:
		return cty.NumberFloatVal(value), nil
	case map[string]any:
		if len(value) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(value))
		for key, item := range value {
			ctyVal, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", key, err)
			}
			attrs[key] = ctyVal
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(value) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(value))
		for i, item := range value {
			ctyVal, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, ctyVal)
		}
		return cty.TupleVal(elems), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unsupported type for conversion to cty.Value: %T", v)
	}
	return gocty.ToCtyValue(v, ty)
}

// FromCty converts a cty value back into plain Go values: strings, bools,
// int or float64 numbers, []any and map[string]any.
func FromCty(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			item, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = item
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			item, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// elements returns the items of a list-like value, or an error when v is
// not a sequence.
func elements(v any) ([]any, error) {
	switch value := v.(type) {
	case []any:
		return value, nil
	case map[string]any:
		return nil, fmt.Errorf("expected a list, got an object")
	}
	val, err := ToCty(v)
	if err != nil {
		return nil, err
	}
	ty := val.Type()
	if !(ty.IsTupleType() || ty.IsListType() || ty.IsSetType()) {
		return nil, fmt.Errorf("expected a list, got %s", ty.FriendlyName())
	}
	out, err := FromCty(val)
	if err != nil {
		return nil, err
	}
	return out.([]any), nil
}
