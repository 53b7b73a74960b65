package syncchannel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/actiongrid/internal/patch"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// Channel synchronizes one action. Apart from the inbox of remote edits, a
// channel is guarded by the lock of the action's owner: every method except
// Close must be called with that lock held.
type Channel struct {
	hub       *Hub
	action    *tree.Action
	uuid      string
	onControl ControlFunc
	lastSync  map[string]any

	inboxMu sync.Mutex
	inbox   []patch.Patch
}

// UUID returns the correlation key of the channel.
func (c *Channel) UUID() string { return c.uuid }

// Close detaches the channel from its hub.
func (c *Channel) Close() { c.hub.close(c) }

// Initialize sends the full document of the action.
func (c *Channel) Initialize(ctx context.Context) error {
	doc := c.action.Serialize()
	if err := c.hub.emit(EventQuery, Envelope{UUID: c.uuid, Data: doc}); err != nil {
		return err
	}
	c.lastSync = tree.CopyDocument(doc)
	return nil
}

// Rebase takes the current document as the last one sent, without sending
// anything.
func (c *Channel) Rebase() {
	c.lastSync = tree.CopyDocument(c.action.Serialize())
}

// Update sends the diff since the last sync, if any. It reports whether a
// message was sent.
func (c *Channel) Update(ctx context.Context) (bool, error) {
	doc := c.action.Serialize()
	diff, err := patch.Diff(c.lastSync, doc)
	if err != nil {
		return false, err
	}
	if diff.Empty() {
		return false, nil
	}
	ops, err := diff.Operations()
	if err != nil {
		return false, err
	}
	if err := c.hub.emit(EventUpdate, Envelope{UUID: c.uuid, Data: ops}); err != nil {
		return false, err
	}
	c.lastSync = tree.CopyDocument(doc)
	return true, nil
}

// Exchange sends the diff since the last sync, even when empty, and waits
// for the observer's reply. l is released while waiting. The reply patch is
// applied onto the action.
func (c *Channel) Exchange(ctx context.Context, l sync.Locker) error {
	doc := c.action.Serialize()
	diff, err := patch.Diff(c.lastSync, doc)
	if err != nil {
		return err
	}
	ops, err := diff.Operations()
	if err != nil {
		return err
	}

	reply := c.hub.expect(c.uuid)
	defer c.hub.forget(c.uuid, reply)
	if err := c.hub.emit(EventUpdate, Envelope{UUID: c.uuid, Reply: true, Data: ops}); err != nil {
		return err
	}
	c.lastSync = tree.CopyDocument(doc)

	c.hub.logger.Debug("Waiting for sync reply...", "uuid", c.uuid, "operations", len(ops))
	l.Unlock()
	var p patch.Patch
	select {
	case p = <-reply:
		l.Lock()
	case <-ctx.Done():
		l.Lock()
		return ctx.Err()
	}

	if err := tree.ApplyPatch(c.action, p); err != nil {
		return fmt.Errorf("applying sync reply: %w", err)
	}
	c.lastSync = tree.CopyDocument(c.action.Serialize())
	return nil
}

// Clear asks the observer to drop its view of the action.
func (c *Channel) Clear(ctx context.Context) error {
	return c.hub.emit(EventClear, Envelope{UUID: c.uuid})
}

// Pending reports whether remote edits are queued.
func (c *Channel) Pending() bool {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	return len(c.inbox) > 0
}

// ApplyRemote applies the queued remote edits in arrival order and returns
// how many were applied.
func (c *Channel) ApplyRemote(ctx context.Context) (int, error) {
	c.inboxMu.Lock()
	patches := c.inbox
	c.inbox = nil
	c.inboxMu.Unlock()

	var errs []error
	for _, p := range patches {
		// The observer already holds the edited state.
		if c.lastSync != nil {
			if next, err := patch.Apply(c.lastSync, p); err == nil {
				c.lastSync = next
			}
		}
		if err := tree.ApplyPatch(c.action, p); err != nil {
			errs = append(errs, err)
		}
	}
	return len(patches), errors.Join(errs...)
}

func (c *Channel) enqueue(p patch.Patch) {
	c.inboxMu.Lock()
	c.inbox = append(c.inbox, p)
	c.inboxMu.Unlock()
}

func (c *Channel) control(ctl Control) {
	if c.onControl != nil {
		c.onControl(ctl)
	}
}
