package tree

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Slugify normalizes a node name: lower-case, runs of characters outside
// [a-z0-9_] collapsed into "_" and surrounding underscores trimmed.
func Slugify(name string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(slug, "_")
}

// LabelFromName derives a display label from a slug: "render_frames"
// becomes "Render Frames".
func LabelFromName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// Item carries the identity and display metadata shared by every node.
type Item struct {
	name    string
	label   string
	tooltip string
	hide    bool
	uuid    string
	dirty   bool
}

func newItem(name string) Item {
	return Item{
		name:  Slugify(name),
		uuid:  uuid.NewString(),
		dirty: true,
	}
}

// Name returns the slug identifying the node among its siblings.
func (i *Item) Name() string { return i.name }

// UUID returns the globally unique id generated when the node was created.
func (i *Item) UUID() string { return i.uuid }

// Label returns the display label, derived from the name when unset.
func (i *Item) Label() string {
	if i.label != "" {
		return i.label
	}
	return LabelFromName(i.name)
}

func (i *Item) SetLabel(label string) {
	if i.label != label {
		i.label = label
		i.dirty = true
	}
}

func (i *Item) Tooltip() string { return i.tooltip }

func (i *Item) SetTooltip(tooltip string) {
	if i.tooltip != tooltip {
		i.tooltip = tooltip
		i.dirty = true
	}
}

// Hidden reports whether the node is excluded from serialization.
func (i *Item) Hidden() bool { return i.hide }

func (i *Item) SetHidden(hide bool) {
	if i.hide != hide {
		i.hide = hide
		i.dirty = true
	}
}

// MarkDirty invalidates the node's cached document.
func (i *Item) MarkDirty() { i.dirty = true }

func (i *Item) itemDocument() map[string]any {
	return map[string]any{
		"name":    i.name,
		"label":   i.Label(),
		"tooltip": i.tooltip,
		"hide":    i.hide,
		"uuid":    i.uuid,
	}
}

// deserializeItem applies the writable item fields. name and uuid are
// readonly.
func (i *Item) deserializeItem(doc map[string]any) error {
	var errs []error
	if v, ok, err := stringField(doc, "label"); ok {
		i.SetLabel(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := stringField(doc, "tooltip"); ok {
		i.SetTooltip(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := boolField(doc, "hide"); ok {
		i.SetHidden(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	return joinErrors(errs)
}
