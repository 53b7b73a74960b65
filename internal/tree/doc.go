// Package tree holds the in-memory model of an action: a root Action, nested
// Steps and leaf Commands whose inputs and outputs are Sockets.
//
// Every node caches its serialized document and is marked dirty whenever one
// of its fields changes, so Serialize on an unchanged subtree returns the same
// cached map. Documents are the unit exchanged with remote observers and are
// also what Deserialize consumes, which makes a serialize/diff/patch round
// trip the basis of synchronization.
//
// Ownership is strictly top-down. Parent pointers are plain lookups used for
// connection resolution and context inheritance; a subtree never outlives the
// Action that created it. None of the types are safe for concurrent use; the
// execution engine serializes access to an Action.
package tree
