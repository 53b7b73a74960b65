package tree

import (
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/actiongrid/internal/connection"
	"github.com/specialistvlad/actiongrid/internal/status"
)

// LogEntry is one record of a command's log.
type LogEntry struct {
	Level   string
	Message string
}

// Command is a leaf node delegating its work to the executor registered
// under its definition name.
type Command struct {
	Item
	parent     *Step
	definition string
	index      int
	askUser    bool
	status     status.Status
	skip       bool
	logs       []LogEntry
	progress   int
	inputs     []*Socket
	outputs    []*Socket
	cache      map[string]any
}

// NewCommand builds a detached command. Sockets declared for the definition
// by catalog are created with their initial values; a definition unknown to
// a non-nil catalog leaves the command INVALID.
func NewCommand(name, definition string, catalog Catalog) *Command {
	c := &Command{
		Item:       newItem(name),
		definition: definition,
		status:     status.Initialized,
	}
	if catalog == nil {
		return c
	}
	inputs, outputs, ok := catalog.Blueprint(definition)
	if !ok {
		c.status = status.Invalid
		return c
	}
	for _, spec := range inputs {
		c.addSocket(newSocket(spec, connection.Inputs))
	}
	for _, spec := range outputs {
		c.addSocket(newSocket(spec, connection.Outputs))
	}
	return c
}

func (c *Command) Definition() string { return c.definition }

// Parent returns the owning step.
func (c *Command) Parent() *Step { return c.parent }

// Index is the command's position in its action's flattened sequence, as of
// the last flatten.
func (c *Command) Index() int { return c.index }

func (c *Command) setIndex(i int) {
	if c.index != i {
		c.index = i
		c.dirty = true
	}
}

func (c *Command) AskUser() bool { return c.askUser }

func (c *Command) SetAskUser(ask bool) {
	if c.askUser != ask {
		c.askUser = ask
		c.dirty = true
	}
}

func (c *Command) Status() status.Status { return c.status }

func (c *Command) SetStatus(s status.Status) {
	if c.status != s {
		c.status = s
		c.dirty = true
	}
}

func (c *Command) Skip() bool { return c.skip }

func (c *Command) SetSkip(skip bool) {
	if c.skip != skip {
		c.skip = skip
		c.dirty = true
	}
}

func (c *Command) Progress() int { return c.progress }

// SetProgress stores an advisory progress percentage clamped to 0..100.
func (c *Command) SetProgress(p int) {
	p = max(0, min(100, p))
	if c.progress != p {
		c.progress = p
		c.dirty = true
	}
}

func (c *Command) Logs() []LogEntry { return slices.Clone(c.logs) }

func (c *Command) AppendLog(level, message string) {
	c.logs = append(c.logs, LogEntry{Level: level, Message: message})
	c.dirty = true
}

func (c *Command) ClearLogs() {
	if len(c.logs) > 0 {
		c.logs = nil
		c.dirty = true
	}
}

func (c *Command) Inputs() []*Socket  { return slices.Clone(c.inputs) }
func (c *Command) Outputs() []*Socket { return slices.Clone(c.outputs) }

// Input returns the named input socket or nil.
func (c *Command) Input(name string) *Socket { return c.socket(connection.Inputs, name) }

// Output returns the named output socket or nil.
func (c *Command) Output(name string) *Socket { return c.socket(connection.Outputs, name) }

func (c *Command) socket(direction connection.Direction, name string) *Socket {
	name = Slugify(name)
	for _, s := range c.sockets(direction) {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (c *Command) sockets(direction connection.Direction) []*Socket {
	if direction == connection.Inputs {
		return c.inputs
	}
	return c.outputs
}

// AddSocket attaches s, replacing any socket with the same name and
// direction.
func (c *Command) AddSocket(s *Socket) { c.addSocket(s) }

func (c *Command) addSocket(s *Socket) {
	s.command = c
	list := c.sockets(s.direction)
	if i := slices.IndexFunc(list, func(o *Socket) bool { return o.name == s.name }); i >= 0 {
		list[i] = s
	} else {
		list = append(list, s)
	}
	if s.direction == connection.Inputs {
		c.inputs = list
	} else {
		c.outputs = list
	}
	c.dirty = true
}

// EvalInputs evaluates every input socket by name.
func (c *Command) EvalInputs() (map[string]any, error) {
	out := make(map[string]any, len(c.inputs))
	for _, s := range c.inputs {
		v, err := s.Eval()
		if err != nil {
			return nil, err
		}
		out[s.name] = v
	}
	return out, nil
}

// Path returns the dotted names from the nearest action root to c.
func (c *Command) Path() string {
	if c.parent == nil {
		return c.name
	}
	return joinPath(c.parent.pathFromRoot(), c.name)
}

// Context returns the action's context metadata overlaid with the
// context_overrides of every enclosing step, outermost first.
func (c *Command) Context() map[string]any {
	if c.parent == nil {
		return map[string]any{}
	}
	return c.parent.Context()
}

// Store returns the key/value store scoped to the command's step.
func (c *Command) Store() Store {
	return Store{step: c.parent}
}

// Dirty reports the command's effective dirtiness, sockets included.
func (c *Command) Dirty() bool {
	if c.dirty || c.cache == nil {
		return true
	}
	for _, s := range c.inputs {
		if s.dirty {
			return true
		}
	}
	for _, s := range c.outputs {
		if s.dirty {
			return true
		}
	}
	return false
}

// Serialize returns the cached document when nothing changed since the last
// call. Callers must not mutate the returned map.
func (c *Command) Serialize() map[string]any {
	if !c.Dirty() {
		return c.cache
	}
	doc := c.itemDocument()
	doc["definition"] = c.definition
	doc["index"] = c.index
	doc["ask_user"] = c.askUser
	doc["status"] = int(c.status)
	doc["skip"] = c.skip
	doc["progress"] = c.progress
	logs := make([]any, len(c.logs))
	for i, l := range c.logs {
		logs[i] = map[string]any{"level": l.Level, "message": l.Message}
	}
	doc["logs"] = logs
	doc[string(connection.Inputs)] = serializeSockets(c.inputs)
	doc[string(connection.Outputs)] = serializeSockets(c.outputs)

	for _, s := range c.inputs {
		s.dirty = false
	}
	for _, s := range c.outputs {
		s.dirty = false
	}
	c.cache = doc
	c.dirty = false
	return doc
}

func serializeSockets(sockets []*Socket) map[string]any {
	out := make(map[string]any, len(sockets))
	for _, s := range sockets {
		if s.hide {
			continue
		}
		out[s.name] = s.Serialize()
	}
	return out
}

// Deserialize applies doc onto the command. definition and uuid are
// readonly. Hidden sockets are only updated when force is set.
func (c *Command) Deserialize(doc map[string]any, force bool) error {
	var errs []error
	if err := c.deserializeItem(doc); err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := intField(doc, "index"); ok {
		c.setIndex(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := boolField(doc, "ask_user"); ok {
		c.SetAskUser(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := boolField(doc, "skip"); ok {
		c.SetSkip(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := intField(doc, "progress"); ok {
		c.SetProgress(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if raw, ok := doc["status"]; ok {
		s, err := status.Parse(raw)
		if err != nil {
			errs = append(errs, fieldError("status", err))
		} else {
			c.SetStatus(s)
		}
	}
	if raw, ok := doc["logs"]; ok {
		logs, err := parseLogs(raw)
		if err != nil {
			errs = append(errs, fieldError("logs", err))
		} else if !slices.Equal(logs, c.logs) {
			c.logs = logs
			c.dirty = true
		}
	}
	for _, direction := range []connection.Direction{connection.Inputs, connection.Outputs} {
		if err := c.deserializeSockets(doc, direction, force); err != nil {
			errs = append(errs, err)
		}
	}
	c.dirty = true
	return joinErrors(errs)
}

func (c *Command) deserializeSockets(doc map[string]any, direction connection.Direction, force bool) error {
	entries, ok, err := mapField(doc, string(direction))
	if !ok {
		return err
	}
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		entry, isMap := entries[name].(map[string]any)
		if !isMap {
			errs = append(errs, fieldError(string(direction)+"."+name, fmt.Errorf("expected an object, got %T", entries[name])))
			continue
		}
		if existing := c.socket(direction, name); existing != nil {
			if existing.hide && !force {
				continue
			}
			if err := existing.Deserialize(entry); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		s, err := socketFromDocument(name, entry, direction)
		if err != nil {
			errs = append(errs, err)
		}
		if s != nil {
			c.addSocket(s)
		}
	}
	return joinErrors(errs)
}

func parseLogs(raw any) ([]LogEntry, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}
	logs := make([]LogEntry, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected log entries to be objects, got %T", item)
		}
		level, _ := entry["level"].(string)
		message, _ := entry["message"].(string)
		logs = append(logs, LogEntry{Level: level, Message: message})
	}
	return logs, nil
}
