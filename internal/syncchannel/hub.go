package syncchannel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/patch"
	"github.com/specialistvlad/actiongrid/internal/transport"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Control is a remote request routed to the owner of a channel.
type Control string

const (
	ControlCancel Control = EventCancel
	ControlUndo   Control = EventUndo
	ControlRedo   Control = EventRedo
	// ControlEdit signals that a remote edit was queued on the channel.
	ControlEdit Control = EventUpdate
)

// ControlFunc receives the controls addressed to one channel. It is called
// from the transport's goroutine and must not block.
type ControlFunc func(Control)

// Hub multiplexes the channels of every action over one transport.
type Hub struct {
	transport transport.Transport
	logger    *slog.Logger
	metrics   *metrics

	mu       sync.Mutex
	channels map[string]*Channel
	// pending holds the reply slot of each action waiting on an update.
	pending map[string]chan patch.Patch
}

// NewHub registers the incoming event handlers on t.
func NewHub(ctx context.Context, t transport.Transport, reg prometheus.Registerer) *Hub {
	h := &Hub{
		transport: t,
		logger:    ctxlog.FromContext(ctx).With("component", "syncchannel"),
		metrics:   newMetrics(reg),
		channels:  make(map[string]*Channel),
		pending:   make(map[string]chan patch.Patch),
	}
	t.On(EventUpdateResponse, h.onReply)
	t.On(EventUpdate, h.onEdit)
	for _, c := range []Control{ControlCancel, ControlUndo, ControlRedo} {
		t.On(string(c), func(payload any) { h.onControl(c, payload) })
	}
	return h
}

// Open creates the channel of action. onControl may be nil.
func (h *Hub) Open(action *tree.Action, onControl ControlFunc) *Channel {
	c := &Channel{hub: h, action: action, uuid: action.UUID(), onControl: onControl}
	h.mu.Lock()
	h.channels[c.uuid] = c
	h.mu.Unlock()
	h.logger.Debug("Sync channel opened.", "action", action.Name(), "uuid", c.uuid)
	return c
}

func (h *Hub) close(c *Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.channels[c.uuid] == c {
		delete(h.channels, c.uuid)
	}
}

func (h *Hub) channel(uuid string) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.channels[uuid]
}

func (h *Hub) emit(event string, env Envelope) error {
	h.metrics.messages.WithLabelValues(event, directionOut).Inc()
	if err := h.transport.Emit(event, env); err != nil {
		h.logger.Warn("Failed to send sync message.", "event", event, "uuid", env.UUID, "error", err)
		return err
	}
	return nil
}

// expect reserves the reply slot of uuid. It must be called before the
// update is emitted since a transport may deliver the reply synchronously.
func (h *Hub) expect(uuid string) chan patch.Patch {
	reply := make(chan patch.Patch, 1)
	h.mu.Lock()
	h.pending[uuid] = reply
	h.mu.Unlock()
	h.metrics.pending.Inc()
	return reply
}

func (h *Hub) forget(uuid string, reply chan patch.Patch) {
	h.mu.Lock()
	if h.pending[uuid] == reply {
		delete(h.pending, uuid)
	}
	h.mu.Unlock()
	h.metrics.pending.Dec()
}

func (h *Hub) onReply(payload any) {
	h.metrics.messages.WithLabelValues(EventUpdateResponse, directionIn).Inc()
	env, p, ok := h.decode(EventUpdateResponse, payload)
	if !ok {
		return
	}
	h.mu.Lock()
	reply, waiting := h.pending[env.UUID]
	h.mu.Unlock()
	if !waiting {
		h.logger.Debug("Dropping reply nobody waits for.", "uuid", env.UUID)
		return
	}
	select {
	case reply <- p:
	default:
		h.logger.Debug("Dropping duplicate reply.", "uuid", env.UUID)
	}
}

func (h *Hub) onEdit(payload any) {
	h.metrics.messages.WithLabelValues(EventUpdate, directionIn).Inc()
	env, p, ok := h.decode(EventUpdate, payload)
	if !ok || p.Empty() {
		return
	}
	c := h.channel(env.UUID)
	if c == nil {
		h.logger.Debug("Dropping edit for unknown action.", "uuid", env.UUID)
		return
	}
	c.enqueue(p)
	c.control(ControlEdit)
}

func (h *Hub) onControl(control Control, payload any) {
	h.metrics.messages.WithLabelValues(string(control), directionIn).Inc()
	env, err := decodeEnvelope(payload)
	if err != nil {
		h.logger.Warn("Ignoring malformed sync message.", "event", control, "error", err)
		return
	}
	c := h.channel(env.UUID)
	if c == nil {
		h.logger.Debug("Dropping control for unknown action.", "event", control, "uuid", env.UUID)
		return
	}
	c.control(control)
}

func (h *Hub) decode(event string, payload any) (Envelope, patch.Patch, bool) {
	env, err := decodeEnvelope(payload)
	if err != nil {
		h.logger.Warn("Ignoring malformed sync message.", "event", event, "error", err)
		return env, nil, false
	}
	p, err := patch.Decode(env.Data)
	if err != nil {
		h.logger.Warn("Ignoring sync message with a malformed patch.", "event", event, "uuid", env.UUID, "error", err)
		return env, nil, false
	}
	return env, p, true
}
