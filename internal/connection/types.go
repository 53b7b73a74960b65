// internal/connection/types.go
package connection

// Direction selects which socket list of a command a connection targets.
type Direction string

const (
	Inputs  Direction = "inputs"
	Outputs Direction = "outputs"
)

// Connection is an immutable reference to a socket by path.
type Connection struct {
	// Path holds the child names leading to the command owning the socket.
	Path      []string
	Direction Direction
	Socket    string
}

// New builds a connection from its parts. The path slice is copied.
func New(path []string, direction Direction, socket string) Connection {
	return Connection{
		Path:      append([]string(nil), path...),
		Direction: direction,
		Socket:    socket,
	}
}

// Segments returns every segment of the connection, including the direction
// and socket name, in resolution order.
func (c Connection) Segments() []string {
	segments := make([]string, 0, len(c.Path)+2)
	segments = append(segments, c.Path...)
	return append(segments, string(c.Direction), c.Socket)
}
