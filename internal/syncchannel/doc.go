// Package syncchannel keeps a remote observer's view of running actions in
// sync with the local trees.
//
// A Hub owns one transport and routes incoming events to the Channel of the
// action they name. A Channel remembers the last document sent for its
// action and exchanges structural diffs against it:
//
//	outgoing: query (full snapshot), update (diff, optionally awaiting a
//	          reply), clear
//	incoming: update_response (patch answering an update), update
//	          (unsolicited edit), cancel, undo, redo
//
// Every message is wrapped in an Envelope keyed by the action uuid.
package syncchannel
