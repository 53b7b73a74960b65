package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actiongrid/internal/connection"
	"github.com/specialistvlad/actiongrid/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const (
	tagInclude    = "!include"
	tagInherit    = "!inherit"
	tagConnectIn  = "!connect-in"
	tagConnectOut = "!connect-out"
	tagMerge      = "!!merge"

	stepsKey    = "steps"
	commandsKey = "commands"
	tasksKey    = "tasks"
	// orderKey records the document position of a child until finalize
	// turns it into an index.
	orderKey = "__order"
)

// loader resolves one action. Parsed files are cached for its lifetime.
type loader struct {
	searchPath []string
	files      map[string]*yaml.Node
	// active holds the references being decoded, to detect include cycles.
	active []string
	diags  hcl.Diagnostics
}

func newLoader(searchPath []string) *loader {
	return &loader{
		searchPath: searchPath,
		files:      make(map[string]*yaml.Node),
	}
}

func refID(path, key string) string { return path + "#" + key }

func (l *loader) errorf(file string, node *yaml.Node, summary, format string, args ...any) {
	l.report(hcl.DiagError, file, node, summary, fmt.Sprintf(format, args...))
}

func (l *loader) warnf(file string, node *yaml.Node, summary, format string, args ...any) {
	l.report(hcl.DiagWarning, file, node, summary, fmt.Sprintf(format, args...))
}

func (l *loader) report(severity hcl.DiagnosticSeverity, file string, node *yaml.Node, summary, detail string) {
	d := &hcl.Diagnostic{Severity: severity, Summary: summary, Detail: detail}
	if file != "" {
		pos := hcl.Pos{Line: 1, Column: 1}
		if node != nil {
			pos = hcl.Pos{Line: node.Line, Column: node.Column}
		}
		d.Subject = &hcl.Range{Filename: file, Start: pos, End: pos}
	}
	l.diags = append(l.diags, d)
}

// parseFile returns the root node of a YAML file.
func (l *loader) parseFile(path string) (*yaml.Node, error) {
	if node, ok := l.files[path]; ok {
		return node, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	node := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		} else {
			node = doc.Content[0]
		}
	}
	l.files[path] = node
	return node, nil
}

// splitReference splits `file[.key]`. File names may carry a YAML
// extension; a leading dot refers to the current file.
func splitReference(ref string) (file, key string) {
	ref = strings.TrimSpace(ref)
	for _, ext := range []string{".yaml", ".yml"} {
		if i := strings.Index(ref, ext); i >= 0 {
			end := i + len(ext)
			if end == len(ref) {
				return ref, ""
			}
			if ref[end] == '.' {
				return ref[:end], ref[end+1:]
			}
		}
	}
	file, key, _ = strings.Cut(ref, ".")
	return file, key
}

func joinKey(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "." + b
}

// load decodes the node at key in file, or in current when file is empty.
func (l *loader) load(file, key, category, current string, at *yaml.Node) (any, bool) {
	path := current
	if file != "" {
		searchPath := l.searchPath
		if category != "" {
			searchPath = make([]string, len(l.searchPath))
			for i, dir := range l.searchPath {
				searchPath[i] = filepath.Join(dir, category)
			}
		}
		found, err := fsutil.Lookup(searchPath, file, Extensions...)
		if err != nil {
			l.errorf(current, at, "Referenced file not found", "%v", err)
			return nil, false
		}
		path = found
	}

	id := refID(path, key)
	if slices.Contains(l.active, id) {
		l.errorf(current, at, "Reference cycle", "%s references itself through %s", id, strings.Join(l.active, " -> "))
		return nil, false
	}

	root, err := l.parseFile(path)
	if err != nil {
		l.errorf(current, at, "Referenced file could not be read", "%v", err)
		return nil, false
	}
	node, err := lookupKey(root, key)
	if err != nil {
		l.errorf(current, at, "Malformed key path", "%s: %v", path, err)
		return nil, false
	}

	l.active = append(l.active, id)
	defer func() { l.active = l.active[:len(l.active)-1] }()
	return l.decode(node, path), true
}

func lookupKey(node *yaml.Node, key string) (*yaml.Node, error) {
	if key == "" {
		return node, nil
	}
	current := node
	for _, segment := range strings.Split(key, ".") {
		for current.Kind == yaml.AliasNode {
			current = current.Alias
		}
		if current.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("key %q: %q is not inside a mapping", key, segment)
		}
		var next *yaml.Node
		for i := 0; i+1 < len(current.Content); i += 2 {
			if current.Content[i].Value == segment {
				next = current.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("key %q: no %q", key, segment)
		}
		current = next
	}
	return current, nil
}

func (l *loader) decode(node *yaml.Node, file string) any {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil
		}
		return l.decode(node.Content[0], file)
	case yaml.AliasNode:
		return l.decode(node.Alias, file)
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			out = append(out, l.decode(item, file))
		}
		return out
	case yaml.MappingNode:
		switch node.Tag {
		case tagInherit:
			return l.inherit(node, file)
		case tagInclude:
			l.errorf(file, node, "Invalid include", "!include takes a scalar reference, not a mapping")
			return l.decodeMapping(node, file)
		}
		return l.decodeMapping(node, file)
	}
	return l.decodeScalar(node, file)
}

func (l *loader) decodeScalar(node *yaml.Node, file string) any {
	switch node.Tag {
	case tagInclude:
		ref, key := splitReference(node.Value)
		v, _ := l.load(ref, key, "", file, node)
		return v
	case tagConnectIn, tagConnectOut:
		direction := connection.Inputs
		if node.Tag == tagConnectOut {
			direction = connection.Outputs
		}
		c, err := connection.ParseShorthand(node.Value, direction)
		if err != nil {
			l.errorf(file, node, "Invalid connection", "%v", err)
			return node.Value
		}
		return c.Document()
	}
	if strings.HasPrefix(node.Tag, "!") && !strings.HasPrefix(node.Tag, "!!") {
		l.warnf(file, node, "Unknown tag", "tag %s is not supported, the value is read as a string", node.Tag)
		return node.Value
	}
	var v any
	if err := node.Decode(&v); err != nil {
		l.errorf(file, node, "Invalid value", "%v", err)
		return node.Value
	}
	return v
}

func (l *loader) decodeMapping(node *yaml.Node, file string) map[string]any {
	out := make(map[string]any, len(node.Content)/2)
	var merges []map[string]any
	position := 0
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		value := l.decode(valueNode, file)

		if keyNode.Tag == tagMerge {
			switch m := value.(type) {
			case map[string]any:
				merges = append(merges, m)
			case []any:
				for _, item := range m {
					if im, ok := item.(map[string]any); ok {
						merges = append(merges, im)
					}
				}
			}
			continue
		}

		key := keyNode.Value
		switch key {
		case stepsKey, commandsKey:
			if children, ok := value.(map[string]any); ok {
				position = stampOrder(children, valueNode, position)
			}
		case string(connection.Inputs), string(connection.Outputs):
			if sockets, ok := value.(map[string]any); ok {
				normalizeSockets(sockets)
			}
		}
		out[key] = value
	}
	for _, m := range merges {
		for k, v := range m {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out
}

// inherit merges the node's own keys over the referenced parent node.
func (l *loader) inherit(node *yaml.Node, file string) any {
	var parent, key, category string
	body := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: node.Line, Column: node.Column}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		switch k.Value {
		case "parent":
			parent = v.Value
		case "key":
			key = v.Value
		case "category":
			category = v.Value
		default:
			body.Content = append(body.Content, k, v)
		}
	}
	content := l.decodeMapping(body, file)

	if parent == "" {
		l.errorf(file, node, "Invalid inherit", "!inherit requires a parent")
		return content
	}
	ref, refKey := splitReference(parent)
	base, ok := l.load(ref, joinKey(refKey, key), category, file, node)
	if !ok {
		return content
	}
	baseMap, ok := base.(map[string]any)
	if !ok {
		l.errorf(file, node, "Type mismatch", "inherited node %s is %T, not a mapping", parent, base)
		return content
	}
	merged, err := overlay(baseMap, content)
	if err != nil {
		l.errorf(file, node, "Type mismatch", "cannot inherit from %s: %v", parent, err)
		return content
	}
	return merged
}

// stampOrder records the document position of each child, continuing from
// start, and returns the next position.
func stampOrder(children map[string]any, node *yaml.Node, start int) int {
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	var names []string
	if node.Kind == yaml.MappingNode && node.Tag != tagInherit {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Tag != tagMerge {
				names = append(names, node.Content[i].Value)
			}
		}
	}
	for _, name := range sortedByOrder(children) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for _, name := range names {
		if entry, ok := children[name].(map[string]any); ok {
			entry[orderKey] = start
			start++
		}
	}
	return start
}

// normalizeSockets expands the `name: value` shorthand into a socket
// document. A mapping with a "value" key is already a socket document.
func normalizeSockets(sockets map[string]any) {
	for name, v := range sockets {
		if m, ok := v.(map[string]any); ok {
			if _, full := m["value"]; full {
				continue
			}
		}
		sockets[name] = map[string]any{"value": v}
	}
}
