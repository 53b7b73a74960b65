package tree

import (
	"cmp"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/specialistvlad/actiongrid/internal/connection"
	"github.com/specialistvlad/actiongrid/internal/status"
)

// Document keys holding the children of a step.
const (
	StepsKey    = "steps"
	CommandsKey = "commands"
)

// Node is a child of a Step: either a *Step or a *Command.
type Node interface {
	Name() string
	UUID() string
	Label() string
	Hidden() bool
	Parent() *Step
	Path() string
	Status() status.Status
	Dirty() bool
	Serialize() map[string]any
	Deserialize(doc map[string]any, force bool) error
}

var (
	_ Node = (*Step)(nil)
	_ Node = (*Command)(nil)
)

// Step is an ordered group of child steps and commands. Its status is
// derived from its children.
type Step struct {
	Item
	parent           *Step
	index            int
	children         map[string]Node
	order            []string
	store            map[string]any
	contextOverrides map[string]any
	// action is set on steps that are the root of an Action.
	action *Action
	cache  map[string]any
}

// NewStep builds a detached, empty step.
func NewStep(name string) *Step {
	s := newStep(name)
	return &s
}

func newStep(name string) Step {
	return Step{
		Item:             newItem(name),
		children:         make(map[string]Node),
		store:            make(map[string]any),
		contextOverrides: make(map[string]any),
	}
}

func (s *Step) Parent() *Step { return s.parent }

// Action returns the nearest action enclosing s, s itself included.
func (s *Step) Action() *Action {
	if root := s.actionRoot(); root != nil {
		return root.action
	}
	return nil
}

func (s *Step) actionRoot() *Step {
	for n := s; n != nil; n = n.parent {
		if n.action != nil {
			return n
		}
	}
	return nil
}

// Index orders the step among its siblings when it is first attached.
func (s *Step) Index() int { return s.index }

func (s *Step) SetIndex(i int) {
	if s.index != i {
		s.index = i
		s.dirty = true
	}
}

// Status is the aggregate of the children's statuses.
func (s *Step) Status() status.Status {
	statuses := make([]status.Status, 0, len(s.children))
	for _, name := range s.order {
		statuses = append(statuses, s.children[name].Status())
	}
	return status.Aggregate(statuses)
}

// Children returns the children in order, hidden ones included.
func (s *Step) Children() []Node {
	out := make([]Node, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.children[name])
	}
	return out
}

// Child returns the named child or nil.
func (s *Step) Child(name string) Node {
	return s.children[Slugify(name)]
}

// AddChild attaches n as the last child, replacing a child with the same
// name in place.
func (s *Step) AddChild(n Node) {
	name := n.Name()
	if _, exists := s.children[name]; !exists {
		s.order = append(s.order, name)
	}
	s.children[name] = n
	setParent(n, s)
	s.dirty = true
}

// RemoveChild detaches the named child. It reports whether a child was
// removed.
func (s *Step) RemoveChild(name string) bool {
	name = Slugify(name)
	n, ok := s.children[name]
	if !ok {
		return false
	}
	delete(s.children, name)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == name })
	setParent(n, nil)
	s.dirty = true
	return true
}

func setParent(n Node, parent *Step) {
	switch node := n.(type) {
	case *Step:
		node.parent = parent
	case *Command:
		node.parent = parent
	}
}

// Commands returns every command of the subtree in depth-first child order,
// hidden ones included.
func (s *Step) Commands() []*Command {
	var out []*Command
	for _, name := range s.order {
		switch node := s.children[name].(type) {
		case *Command:
			out = append(out, node)
		case *Step:
			out = append(out, node.Commands()...)
		}
	}
	return out
}

// Find returns the node at the dotted path relative to s.
func (s *Step) Find(path string) (Node, error) {
	var current Node = s
	if path == "" {
		return current, nil
	}
	for _, name := range strings.Split(path, ".") {
		step, ok := current.(*Step)
		if !ok {
			return nil, fmt.Errorf("%w: %q: %s is a command", ErrNotFound, path, current.Name())
		}
		child := step.Child(name)
		if child == nil {
			return nil, fmt.Errorf("%w: %q: no child %q under %q", ErrNotFound, path, name, step.Label())
		}
		current = child
	}
	return current, nil
}

// Path returns the dotted names from the nearest enclosing action root to s.
// An action root has an empty path.
func (s *Step) Path() string { return s.pathFromRoot() }

func (s *Step) pathFromRoot() string {
	if s.action != nil || s.parent == nil {
		return ""
	}
	return joinPath(s.parent.pathFromRoot(), s.name)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (s *Step) resolveSocket(conn connection.Connection) (*Socket, error) {
	segments := conn.Segments()
	current := s
	for i, name := range conn.Path {
		child := current.Child(name)
		switch node := child.(type) {
		case *Step:
			current = node
		case *Command:
			if i != len(conn.Path)-1 {
				return nil, unresolved(conn, segments[i+1:])
			}
			socket := node.socket(conn.Direction, conn.Socket)
			if socket == nil {
				return nil, unresolved(conn, segments[len(segments)-1:])
			}
			return socket, nil
		default:
			return nil, unresolved(conn, segments[i:])
		}
	}
	return nil, unresolved(conn, segments[len(conn.Path):])
}

// Store returns the key/value store scoped to s.
func (s *Step) Store() Store { return Store{step: s} }

// ContextOverrides returns a copy of the step's context overrides.
func (s *Step) ContextOverrides() map[string]any {
	return CopyDocument(s.contextOverrides)
}

func (s *Step) SetContextOverride(key string, value any) {
	s.contextOverrides[key] = value
	s.dirty = true
}

// Context returns the enclosing action's context metadata overlaid with the
// overrides of every step from the action root down to s.
func (s *Step) Context() map[string]any {
	var chain []*Step
	for n := s; n != nil; n = n.parent {
		chain = append(chain, n)
		if n.action != nil {
			break
		}
	}
	ctx := map[string]any{}
	if root := chain[len(chain)-1]; root.action != nil {
		ctx = root.action.ContextMetadata()
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].contextOverrides {
			ctx[k] = DeepCopy(v)
		}
	}
	return ctx
}

func (s *Step) catalog() Catalog {
	if a := s.Action(); a != nil {
		return a.catalog
	}
	return nil
}

// Dirty reports the step's effective dirtiness, children included.
func (s *Step) Dirty() bool {
	if s.dirty || s.cache == nil {
		return true
	}
	for _, n := range s.children {
		if n.Dirty() {
			return true
		}
	}
	return false
}

// Serialize returns the cached document when nothing in the subtree changed
// since the last call. Hidden children are left out. Callers must not mutate
// the returned map.
func (s *Step) Serialize() map[string]any {
	if !s.Dirty() {
		return s.cache
	}
	doc := s.itemDocument()
	doc["index"] = s.index
	doc["status"] = int(s.Status())
	doc["store"] = DeepCopy(s.store)
	doc["context_overrides"] = DeepCopy(s.contextOverrides)

	steps := map[string]any{}
	commands := map[string]any{}
	order := make([]any, 0, len(s.order))
	for _, name := range s.order {
		child := s.children[name]
		if child.Hidden() {
			continue
		}
		order = append(order, name)
		switch child.(type) {
		case *Step:
			steps[name] = child.Serialize()
		case *Command:
			commands[name] = child.Serialize()
		}
	}
	doc["order"] = order
	doc[StepsKey] = steps
	doc[CommandsKey] = commands
	if s.action != nil {
		s.action.decorate(doc)
	}

	s.cache = doc
	s.dirty = false
	return doc
}

// Deserialize applies doc onto the step and its subtree. Existing children
// are updated in place, unknown ones are constructed; a null child entry
// removes that child. Hidden children are only touched when force is set.
// uuid, name, status and the action's context metadata are readonly.
func (s *Step) Deserialize(doc map[string]any, force bool) error {
	var errs []error
	if err := s.deserializeItem(doc); err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := intField(doc, "index"); ok {
		s.SetIndex(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if m, ok, err := mapField(doc, "store"); ok {
		if !reflect.DeepEqual(m, s.store) {
			s.store = CopyDocument(m)
		}
	} else if err != nil {
		errs = append(errs, err)
	}
	if m, ok, err := mapField(doc, "context_overrides"); ok {
		if !reflect.DeepEqual(m, s.contextOverrides) {
			s.contextOverrides = CopyDocument(m)
		}
	} else if err != nil {
		errs = append(errs, err)
	}
	if s.action != nil {
		if err := s.action.undecorate(doc); err != nil {
			errs = append(errs, err)
		}
	}

	var added []Node
	for _, key := range []string{StepsKey, CommandsKey} {
		nodes, err := s.deserializeChildren(doc, key, force)
		if err != nil {
			errs = append(errs, err)
		}
		added = append(added, nodes...)
	}
	slices.SortStableFunc(added, func(a, b Node) int {
		return cmp.Or(cmp.Compare(nodeIndex(a), nodeIndex(b)), strings.Compare(a.Name(), b.Name()))
	})
	for _, n := range added {
		s.AddChild(n)
	}

	if order, ok, err := stringListField(doc, "order"); ok {
		s.reorder(order)
	} else if err != nil {
		errs = append(errs, err)
	}

	s.dirty = true
	return joinErrors(errs)
}

func (s *Step) deserializeChildren(doc map[string]any, key string, force bool) ([]Node, error) {
	entries, ok, err := mapField(doc, key)
	if !ok {
		return nil, err
	}
	var errs []error
	var added []Node
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		raw := entries[name]
		if raw == nil {
			s.RemoveChild(name)
			continue
		}
		entry, isMap := raw.(map[string]any)
		if !isMap {
			errs = append(errs, fieldError(key+"."+name, fmt.Errorf("expected an object, got %T", raw)))
			continue
		}
		if existing := s.Child(name); existing != nil {
			if !kindMatches(existing, key) {
				errs = append(errs, fieldError(key+"."+name, fmt.Errorf("%q already exists with a different kind", name)))
				continue
			}
			if existing.Hidden() && !force {
				continue
			}
			if err := existing.Deserialize(entry, force); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
			continue
		}
		n, err := s.construct(name, key, entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		if n == nil {
			continue
		}
		added = append(added, n)
	}
	return added, joinErrors(errs)
}

// construct builds a brand-new child from its document. The document is
// applied with force so hidden nodes are fully built.
func (s *Step) construct(name, key string, doc map[string]any) (Node, error) {
	if key == CommandsKey {
		definition, _, err := stringField(doc, "definition")
		if err != nil {
			return nil, err
		}
		c := NewCommand(name, definition, s.catalog())
		c.parent = s
		return c, c.Deserialize(doc, true)
	}

	var step *Step
	if isAction, _, _ := boolField(doc, "action"); isAction {
		parent := s.Action()
		var metadata map[string]any
		var catalog Catalog
		if parent != nil {
			metadata, catalog = parent.metadata, parent.catalog
		}
		step = &NewAction(name, metadata, catalog).Step
	} else {
		step = NewStep(name)
	}
	step.parent = s
	return step, step.Deserialize(doc, true)
}

func kindMatches(n Node, key string) bool {
	switch n.(type) {
	case *Step:
		return key == StepsKey
	case *Command:
		return key == CommandsKey
	}
	return false
}

func nodeIndex(n Node) int {
	switch node := n.(type) {
	case *Step:
		return node.index
	case *Command:
		return node.index
	}
	return 0
}

// reorder places the named children in the given order within the slots
// they already occupy. Unlisted children keep their positions.
func (s *Step) reorder(names []string) {
	listed := make(map[string]bool, len(names))
	var wanted []string
	for _, name := range names {
		name = Slugify(name)
		if _, ok := s.children[name]; ok && !listed[name] {
			listed[name] = true
			wanted = append(wanted, name)
		}
	}
	next := 0
	for i, name := range s.order {
		if listed[name] {
			if s.order[i] != wanted[next] {
				s.dirty = true
			}
			s.order[i] = wanted[next]
			next++
		}
	}
}
