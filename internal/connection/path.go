// internal/connection/path.go
package connection

import (
	"fmt"
	"regexp"
	"strings"
)

// DocumentKey is the key under which a connection is stored when it is
// embedded in a serialized document.
const DocumentKey = "connection"

// segmentRegex matches a single child or socket name.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-"
}

// Parse creates a Connection by parsing its canonical string representation.
func Parse(raw string) (Connection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Connection{}, fmt.Errorf("connection path cannot be empty")
	}

	segments := strings.Split(raw, ".")
	for _, segment := range segments {
		if segment == "" {
			return Connection{}, fmt.Errorf("connection path %q contains empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) || !isValidSegmentName(segment) {
			return Connection{}, fmt.Errorf("invalid connection segment %q in %q", segment, raw)
		}
	}

	if len(segments) < 3 {
		return Connection{}, fmt.Errorf("connection path %q must have the form <children>.<inputs|outputs>.<socket>", raw)
	}

	direction := Direction(segments[len(segments)-2])
	if direction != Inputs && direction != Outputs {
		return Connection{}, fmt.Errorf("connection path %q: expected %q or %q before the socket name, got %q", raw, Inputs, Outputs, direction)
	}

	return New(segments[:len(segments)-2], direction, segments[len(segments)-1]), nil
}

// ParseShorthand builds a connection from a `<children>.<socket>` path,
// inserting the given direction before the socket name. A path that already
// names a direction is parsed as is.
func ParseShorthand(raw string, direction Direction) (Connection, error) {
	if c, err := Parse(raw); err == nil {
		return c, nil
	}
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, ".")
	if idx <= 0 || idx == len(raw)-1 {
		return Connection{}, fmt.Errorf("connection path %q must have the form <children>.<socket>", raw)
	}
	return Parse(raw[:idx] + "." + string(direction) + raw[idx:])
}

// String serializes the Connection into its canonical path representation.
func (c Connection) String() string {
	return strings.Join(c.Segments(), ".")
}

// Equal checks for equality between two connections.
func (c Connection) Equal(other Connection) bool {
	return c.String() == other.String()
}

// Document returns the representation of the connection inside a serialized
// tree document.
func (c Connection) Document() map[string]any {
	return map[string]any{DocumentKey: c.String()}
}

// FromDocument recognizes a serialized connection. It returns false when v is
// not a connection document.
func FromDocument(v any) (Connection, bool, error) {
	switch value := v.(type) {
	case Connection:
		return value, true, nil
	case *Connection:
		if value == nil {
			return Connection{}, false, nil
		}
		return *value, true, nil
	case map[string]any:
		if len(value) != 1 {
			return Connection{}, false, nil
		}
		raw, ok := value[DocumentKey].(string)
		if !ok {
			return Connection{}, false, nil
		}
		c, err := Parse(raw)
		return c, true, err
	default:
		return Connection{}, false, nil
	}
}
