package sockettype

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrCast is returned (wrapped) when a value does not fit a socket type.
var ErrCast = errors.New("socket value cast failed")

// Kind names a socket type variant. It is the value of the "kind" key in a
// type's document.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindSelect Kind = "select"
	KindRanged Kind = "ranged"
	KindArray  Kind = "array"
	KindList   Kind = "list"
	KindPath   Kind = "path"
	KindText   Kind = "text"
	KindAny    Kind = "any"
)

// Type is a socket type descriptor.
type Type interface {
	Kind() Kind
	// Default returns the value a socket of this type holds before anything
	// is assigned to it.
	Default() any
	// Cast validates v and returns it normalized to the type's Go shape.
	Cast(v any) (any, error)
	// Document describes the type for remote observers.
	Document() map[string]any
}

func castError(k Kind, v any, err error) error {
	if err != nil {
		return fmt.Errorf("%w: cannot use %v (%T) as %s: %v", ErrCast, v, v, k, err)
	}
	return fmt.Errorf("%w: cannot use %v (%T) as %s", ErrCast, v, v, k)
}

// scalar covers string, int, float, bool and text.
type scalar struct {
	kind Kind
	ty   cty.Type
}

var (
	String Type = scalar{kind: KindString, ty: cty.String}
	Int    Type = scalar{kind: KindInt, ty: cty.Number}
	Float  Type = scalar{kind: KindFloat, ty: cty.Number}
	Bool   Type = scalar{kind: KindBool, ty: cty.Bool}
	Text   Type = scalar{kind: KindText, ty: cty.String}
	Any    Type = anyType{}
)

func (s scalar) Kind() Kind { return s.kind }

func (s scalar) Default() any {
	switch s.kind {
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindBool:
		return false
	default:
		return ""
	}
}

func (s scalar) Cast(v any) (any, error) {
	if v == nil {
		return s.Default(), nil
	}
	val, err := ToCty(v)
	if err != nil {
		return nil, castError(s.kind, v, err)
	}
	converted, err := convert.Convert(val, s.ty)
	if err != nil {
		return nil, castError(s.kind, v, err)
	}

	switch s.kind {
	case KindInt:
		var i int64
		if err := gocty.FromCtyValue(converted, &i); err != nil {
			return nil, castError(s.kind, v, err)
		}
		return int(i), nil
	case KindFloat:
		var f float64
		if err := gocty.FromCtyValue(converted, &f); err != nil {
			return nil, castError(s.kind, v, err)
		}
		return f, nil
	case KindBool:
		var b bool
		if err := gocty.FromCtyValue(converted, &b); err != nil {
			return nil, castError(s.kind, v, err)
		}
		return b, nil
	default:
		var str string
		if err := gocty.FromCtyValue(converted, &str); err != nil {
			return nil, castError(s.kind, v, err)
		}
		return str, nil
	}
}

func (s scalar) Document() map[string]any {
	return map[string]any{"kind": string(s.kind)}
}

// anyType passes values through untouched.
type anyType struct{}

func (anyType) Kind() Kind               { return KindAny }
func (anyType) Default() any             { return nil }
func (anyType) Cast(v any) (any, error)  { return v, nil }
func (anyType) Document() map[string]any { return map[string]any{"kind": string(KindAny)} }

// Select is an enumerated string type.
type Select struct {
	Options []string
}

func (s Select) Kind() Kind { return KindSelect }

func (s Select) Default() any {
	if len(s.Options) == 0 {
		return ""
	}
	return s.Options[0]
}

func (s Select) Cast(v any) (any, error) {
	if v == nil {
		return s.Default(), nil
	}
	str, err := String.Cast(v)
	if err != nil {
		return nil, castError(KindSelect, v, err)
	}
	if !slices.Contains(s.Options, str.(string)) {
		return nil, castError(KindSelect, v, fmt.Errorf("must be one of %s", strings.Join(s.Options, ", ")))
	}
	return str, nil
}

func (s Select) Document() map[string]any {
	options := make([]any, len(s.Options))
	for i, o := range s.Options {
		options[i] = o
	}
	return map[string]any{"kind": string(KindSelect), "options": options}
}

// Ranged is a bounded number. When Integer is set values are whole numbers.
// A zero Step disables snapping.
type Ranged struct {
	Min, Max, Step float64
	Integer        bool
}

func (r Ranged) Kind() Kind { return KindRanged }

func (r Ranged) Default() any {
	if r.Integer {
		return int(r.Min)
	}
	return r.Min
}

func (r Ranged) Cast(v any) (any, error) {
	if v == nil {
		return r.Default(), nil
	}
	raw, err := Float.Cast(v)
	if err != nil {
		return nil, castError(KindRanged, v, err)
	}
	f := raw.(float64)
	if f < r.Min || f > r.Max {
		return nil, castError(KindRanged, v, fmt.Errorf("must be between %v and %v", r.Min, r.Max))
	}
	if r.Step > 0 {
		f = r.Min + math.Round((f-r.Min)/r.Step)*r.Step
		f = math.Min(f, r.Max)
	}
	if r.Integer {
		return int(math.Round(f)), nil
	}
	return f, nil
}

func (r Ranged) Document() map[string]any {
	return map[string]any{
		"kind":    string(KindRanged),
		"min":     r.Min,
		"max":     r.Max,
		"step":    r.Step,
		"integer": r.Integer,
	}
}

// Array is a fixed-length sequence of Elem.
type Array struct {
	Elem Type
	Len  int
}

func (a Array) Kind() Kind { return KindArray }

func (a Array) Default() any {
	out := make([]any, a.Len)
	for i := range out {
		out[i] = a.Elem.Default()
	}
	return out
}

func (a Array) Cast(v any) (any, error) {
	if v == nil {
		return a.Default(), nil
	}
	items, err := elements(v)
	if err != nil {
		return nil, castError(KindArray, v, err)
	}
	if len(items) != a.Len {
		return nil, castError(KindArray, v, fmt.Errorf("expected %d elements, got %d", a.Len, len(items)))
	}
	return castElements(KindArray, a.Elem, items)
}

func (a Array) Document() map[string]any {
	return map[string]any{"kind": string(KindArray), "elem": a.Elem.Document(), "len": a.Len}
}

// List is a variable-length sequence of Elem.
type List struct {
	Elem Type
}

func (l List) Kind() Kind { return KindList }

func (l List) Default() any { return []any{} }

func (l List) Cast(v any) (any, error) {
	if v == nil {
		return l.Default(), nil
	}
	items, err := elements(v)
	if err != nil {
		return nil, castError(KindList, v, err)
	}
	return castElements(KindList, l.Elem, items)
}

func (l List) Document() map[string]any {
	return map[string]any{"kind": string(KindList), "elem": l.Elem.Document()}
}

func castElements(k Kind, elem Type, items []any) (any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		cast, err := elem.Cast(item)
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", k, i, err)
		}
		out[i] = cast
	}
	return out, nil
}

// Path is a filesystem path. Extensions, when set, restricts the accepted
// file extensions (compared case-insensitively, with the leading dot).
type Path struct {
	Extensions []string
}

func (p Path) Kind() Kind { return KindPath }

func (p Path) Default() any { return "" }

func (p Path) Cast(v any) (any, error) {
	if v == nil {
		return "", nil
	}
	raw, err := String.Cast(v)
	if err != nil {
		return nil, castError(KindPath, v, err)
	}
	str := raw.(string)
	if str == "" {
		return "", nil
	}
	str = filepath.Clean(str)
	if len(p.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(str))
		ok := slices.ContainsFunc(p.Extensions, func(e string) bool { return strings.ToLower(e) == ext })
		if !ok {
			return nil, castError(KindPath, v, fmt.Errorf("extension must be one of %s", strings.Join(p.Extensions, ", ")))
		}
	}
	return str, nil
}

func (p Path) Document() map[string]any {
	doc := map[string]any{"kind": string(KindPath)}
	if len(p.Extensions) > 0 {
		exts := make([]any, len(p.Extensions))
		for i, e := range p.Extensions {
			exts[i] = e
		}
		doc["extensions"] = exts
	}
	return doc
}
