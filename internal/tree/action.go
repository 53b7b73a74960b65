package tree

import (
	"fmt"
)

// Catalog describes the sockets of each known executor definition.
type Catalog interface {
	Blueprint(definition string) (inputs, outputs []SocketSpec, ok bool)
}

// Action is the root step of a runnable tree. It owns an immutable snapshot
// of the pipeline context it was created in.
type Action struct {
	Step
	metadata  map[string]any
	thumbnail string
	shelf     string
	catalog   Catalog
}

// NewAction builds an empty action. metadata is deep copied.
func NewAction(name string, metadata map[string]any, catalog Catalog) *Action {
	a := &Action{
		Step:     newStep(name),
		metadata: CopyDocument(metadata),
		catalog:  catalog,
	}
	a.Step.action = a
	return a
}

// FromDocument builds an action and applies doc onto it.
func FromDocument(name string, doc map[string]any, metadata map[string]any, catalog Catalog) (*Action, error) {
	a := NewAction(name, metadata, catalog)
	if err := a.Deserialize(doc, true); err != nil {
		return a, fmt.Errorf("building action %q: %w", a.Name(), err)
	}
	return a, nil
}

// Root returns the action's root step.
func (a *Action) Root() *Step { return &a.Step }

// ContextMetadata returns a copy of the context snapshot.
func (a *Action) ContextMetadata() map[string]any {
	return CopyDocument(a.metadata)
}

func (a *Action) Catalog() Catalog { return a.catalog }

func (a *Action) Thumbnail() string { return a.thumbnail }

func (a *Action) SetThumbnail(t string) {
	if a.thumbnail != t {
		a.thumbnail = t
		a.dirty = true
	}
}

func (a *Action) Shelf() string { return a.shelf }

func (a *Action) SetShelf(shelf string) {
	if a.shelf != shelf {
		a.shelf = shelf
		a.dirty = true
	}
}

// Flatten returns the commands in execution order and renumbers their index
// to their position in that order.
func (a *Action) Flatten() []*Command {
	commands := a.Commands()
	for i, c := range commands {
		c.setIndex(i)
	}
	return commands
}

// Insert attaches a sub-action built from doc under the step at parentPath.
// Connections inside the sub-action resolve relative to its own root.
func (a *Action) Insert(parentPath, name string, doc map[string]any) (*Action, error) {
	node, err := a.Find(parentPath)
	if err != nil {
		return nil, err
	}
	parent, ok := node.(*Step)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a step", ErrNotFound, parentPath)
	}
	if parent.Child(name) != nil {
		return nil, fmt.Errorf("%w: %q already has a child named %q", ErrInvalidDocument, parentPath, Slugify(name))
	}
	sub := NewAction(name, a.metadata, a.catalog)
	sub.parent = parent
	err = sub.Deserialize(doc, true)
	parent.AddChild(&sub.Step)
	return sub, err
}

func (a *Action) decorate(doc map[string]any) {
	doc["action"] = true
	doc["context_metadata"] = DeepCopy(a.metadata)
	doc["thumbnail"] = a.thumbnail
	doc["shelf"] = a.shelf
}

func (a *Action) undecorate(doc map[string]any) error {
	var errs []error
	if v, ok, err := stringField(doc, "thumbnail"); ok {
		a.SetThumbnail(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := stringField(doc, "shelf"); ok {
		a.SetShelf(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	return joinErrors(errs)
}
