package resolver

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/specialistvlad/actiongrid/internal/connection"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// overlay merges over onto a copy of base: values from over win, nested
// mappings are merged, everything else in base is kept. Neither argument is
// modified.
func overlay(base, over map[string]any) (map[string]any, error) {
	dst := tree.CopyDocument(base)
	src := tree.CopyDocument(over)
	if err := reconcile(dst, src, ""); err != nil {
		return nil, err
	}
	shiftNewChildren(dst, src)
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, err
	}
	return dst, nil
}

// reconcile resolves, ahead of the deep merge, every key whose two sides do
// not have the same shape. Connections may replace literals and the other
// way round; any other mismatch between a mapping and a non-mapping is an
// error.
func reconcile(dst, src map[string]any, path string) error {
	for key, sv := range src {
		dv, exists := dst[key]
		if !exists {
			continue
		}
		if key == orderKey {
			delete(src, key)
			continue
		}
		at := joinKey(path, key)
		dm, dIsMap := dv.(map[string]any)
		sm, sIsMap := sv.(map[string]any)
		switch {
		case dIsMap && sIsMap && !isConnection(dm) && !isConnection(sm):
			if err := reconcile(dm, sm, at); err != nil {
				return err
			}
			continue
		case dv == nil || sv == nil || isConnection(dv) || isConnection(sv):
		case dIsMap != sIsMap:
			return fmt.Errorf("%s: cannot merge %s into %s", at, shape(sv), shape(dv))
		}
		dst[key] = sv
		delete(src, key)
	}
	return nil
}

func isConnection(v any) bool {
	_, ok, _ := connection.FromDocument(v)
	return ok
}

func shape(v any) string {
	switch v.(type) {
	case map[string]any:
		return "a mapping"
	case []any:
		return "a list"
	}
	return fmt.Sprintf("a %T", v)
}

// shiftNewChildren moves children that only exist in over after the
// children of base, and drops the position of children that override an
// existing one so the base position is kept.
func shiftNewChildren(base, over map[string]any) {
	last := -1
	for _, key := range []string{stepsKey, commandsKey} {
		children, _ := base[key].(map[string]any)
		for _, child := range children {
			if o, ok := orderOf(child); ok {
				last = max(last, o)
			}
		}
	}
	for _, key := range []string{stepsKey, commandsKey} {
		overChildren, _ := over[key].(map[string]any)
		baseChildren, _ := base[key].(map[string]any)
		for name, child := range overChildren {
			entry, ok := child.(map[string]any)
			if !ok {
				continue
			}
			if existing, ok := baseChildren[name].(map[string]any); ok {
				delete(entry, orderKey)
				shiftNewChildren(existing, entry)
				continue
			}
			if o, ok := orderOf(entry); ok {
				entry[orderKey] = o + last + 1
			}
		}
	}
}

func orderOf(v any) (int, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	o, ok := m[orderKey].(int)
	return o, ok
}

func sortedByOrder(children map[string]any) []string {
	names := slices.Collect(maps.Keys(children))
	slices.SortFunc(names, func(a, b string) int {
		oa, okA := orderOf(children[a])
		ob, okB := orderOf(children[b])
		if !okA {
			oa = math.MaxInt
		}
		if !okB {
			ob = math.MaxInt
		}
		return cmp.Or(cmp.Compare(oa, ob), strings.Compare(a, b))
	})
	return names
}

// finalize turns recorded positions into `index` fields, numbering the
// children of every step 0..n-1 across steps and commands. An explicit
// index in the definition is kept.
func finalize(v any) {
	switch value := v.(type) {
	case map[string]any:
		numberChildren(value)
		for _, item := range value {
			finalize(item)
		}
	case []any:
		for _, item := range value {
			finalize(item)
		}
	}
}

func numberChildren(m map[string]any) {
	all := map[string]any{}
	entries := map[string]map[string]any{}
	for _, key := range []string{stepsKey, commandsKey} {
		children, _ := m[key].(map[string]any)
		for name, child := range children {
			entry, ok := child.(map[string]any)
			if !ok {
				continue
			}
			id := key + "/" + name
			all[id] = entry
			entries[id] = entry
		}
	}
	for i, id := range sortedByOrder(all) {
		entry := entries[id]
		delete(entry, orderKey)
		if _, explicit := entry["index"]; !explicit {
			entry["index"] = i
		}
	}
}
