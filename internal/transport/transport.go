// Package transport carries named events between a running pipeline and a
// remote observer.
package transport

import "errors"

// ErrClosed is returned when emitting on a closed transport.
var ErrClosed = errors.New("transport closed")

// Handler receives the payload of one incoming event.
type Handler func(payload any)

// Transport is a bidirectional event stream. Payloads are JSON-compatible
// values; on receipt, objects arrive as map[string]any and numbers as
// float64.
type Transport interface {
	Emit(event string, payload any) error
	On(event string, handler Handler)
	Close() error
}
