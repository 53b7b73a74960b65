// Package registry provides the central "glue" between command definitions
// and the Go code executing them.
//
// The Registry stores, per definition name (the `definition` field of a
// command), the executor implementing the command and the specification of
// the sockets it expects. Modules populate it at startup; the tree package
// uses it as a Catalog to build command sockets, and the execution engine
// uses it to dispatch commands. Unknown definition names are reported as
// ErrUnknownDefinition instead of failing at load time.
package registry
