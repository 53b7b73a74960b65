package tree

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/actiongrid/internal/connection"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
)

// SocketSpec declares a socket an executor expects on its commands.
type SocketSpec struct {
	Name    string
	Label   string
	Tooltip string
	Type    sockettype.Type
	// Value is the initial value; nil means the type's default.
	Value any
	Hide  bool
}

// Socket is a typed value holder on a command. Its value is either a literal
// or a connection to another socket of the same action.
type Socket struct {
	Item
	command   *Command
	direction connection.Direction
	typ       sockettype.Type
	value     any
}

func newSocket(spec SocketSpec, direction connection.Direction) *Socket {
	typ := spec.Type
	if typ == nil {
		typ = sockettype.Any
	}
	s := &Socket{
		Item:      newItem(spec.Name),
		direction: direction,
		typ:       typ,
		value:     spec.Value,
	}
	if s.value == nil {
		s.value = typ.Default()
	}
	s.label = spec.Label
	s.tooltip = spec.Tooltip
	s.hide = spec.Hide
	return s
}

func (s *Socket) Type() sockettype.Type { return s.typ }

func (s *Socket) Direction() connection.Direction { return s.direction }

// Command returns the command owning the socket.
func (s *Socket) Command() *Command { return s.command }

// Value returns the raw value: a literal or a connection.Connection.
func (s *Socket) Value() any { return s.value }

// Connection returns the socket's connection, if its value is one.
func (s *Socket) Connection() (connection.Connection, bool) {
	c, ok := s.value.(connection.Connection)
	return c, ok
}

// SetValue replaces the raw value without casting it.
func (s *Socket) SetValue(v any) {
	if c, ok := v.(*connection.Connection); ok && c != nil {
		v = *c
	}
	s.value = v
	s.dirty = true
	if s.command != nil {
		s.command.dirty = true
	}
}

// Eval resolves connections and casts the result to the socket type.
func (s *Socket) Eval() (any, error) {
	return s.eval(map[*Socket]bool{})
}

func (s *Socket) eval(seen map[*Socket]bool) (any, error) {
	if seen[s] {
		return nil, fmt.Errorf("%w: %s is part of a connection cycle", ErrConnection, s.path())
	}
	seen[s] = true

	v := s.value
	if conn, ok := s.Connection(); ok {
		target, err := s.resolve(conn)
		if err != nil {
			return nil, err
		}
		v, err = target.eval(seen)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", conn, err)
		}
	}
	cast, err := s.typ.Cast(v)
	if err != nil {
		return nil, fmt.Errorf("socket %s: %w", s.path(), err)
	}
	return cast, nil
}

func (s *Socket) resolve(conn connection.Connection) (*Socket, error) {
	if s.command == nil || s.command.parent == nil {
		return nil, fmt.Errorf("%w: %s: socket is not attached to an action", ErrConnection, conn)
	}
	root := s.command.parent.actionRoot()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: socket is not attached to an action", ErrConnection, conn)
	}
	return root.resolveSocket(conn)
}

func (s *Socket) path() string {
	if s.command == nil {
		return s.name
	}
	return s.command.Path() + "." + string(s.direction) + "." + s.name
}

// Serialize returns the socket's document.
func (s *Socket) Serialize() map[string]any {
	doc := s.itemDocument()
	doc["type"] = s.typ.Document()
	if conn, ok := s.Connection(); ok {
		doc["value"] = conn.Document()
	} else {
		doc["value"] = s.value
	}
	return doc
}

// Deserialize applies the writable fields of doc. The type is readonly once
// the socket exists.
func (s *Socket) Deserialize(doc map[string]any) error {
	var errs []error
	if err := s.deserializeItem(doc); err != nil {
		errs = append(errs, err)
	}
	if raw, ok := doc["value"]; ok {
		conn, isConn, err := connection.FromDocument(raw)
		switch {
		case err != nil:
			errs = append(errs, fieldError("value", err))
		case isConn:
			s.SetValue(conn)
		default:
			s.SetValue(DeepCopy(raw))
		}
	}
	return joinErrors(errs)
}

func socketFromDocument(name string, doc map[string]any, direction connection.Direction) (*Socket, error) {
	typ, err := sockettype.FromDocument(doc["type"])
	if err != nil {
		return nil, fieldError("type", err)
	}
	s := newSocket(SocketSpec{Name: name, Type: typ}, direction)
	return s, s.Deserialize(doc)
}

func unresolved(conn connection.Connection, rest []string) error {
	return fmt.Errorf("%w: %s: could not resolve %q", ErrConnection, conn, strings.Join(rest, "."))
}
