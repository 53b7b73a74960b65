package transport

import (
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

// Message is an event recorded by a Memory transport.
type Message struct {
	Event   string
	Payload any
}

// Memory is an in-process transport. Events emitted on one end of a pair
// are delivered synchronously to the handlers of the other end, after a JSON
// round trip so receivers see the same shapes as over the network.
type Memory struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	peer     *Memory
	sent     []Message
	closed   bool
}

var _ Transport = (*Memory)(nil)

// NewMemory creates an unconnected transport that only records what is
// emitted on it.
func NewMemory() *Memory {
	return &Memory{handlers: make(map[string][]Handler)}
}

// NewMemoryPair creates two connected ends.
func NewMemoryPair() (*Memory, *Memory) {
	a, b := NewMemory(), NewMemory()
	a.peer, b.peer = b, a
	return a, b
}

func (m *Memory) Emit(event string, payload any) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	wire, err := roundTrip(payload)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.sent = append(m.sent, Message{Event: event, Payload: wire})
	peer := m.peer
	m.mu.Unlock()

	if peer != nil {
		peer.deliver(event, wire)
	}
	return nil
}

func (m *Memory) On(event string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], handler)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns the messages emitted on this end so far.
func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

// Events returns the messages emitted on this end for one event name.
func (m *Memory) Events(event string) []Message {
	var out []Message
	for _, msg := range m.Sent() {
		if msg.Event == event {
			out = append(out, msg)
		}
	}
	return out
}

func (m *Memory) deliver(event string, payload any) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	handlers := slices.Clone(m.handlers[event])
	m.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}

func roundTrip(payload any) (any, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
