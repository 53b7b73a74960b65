// internal/connection/doc.go
/*
Package connection provides the structured representation of a socket
connection: a path that points from one socket to another socket of the same
action tree.

The canonical format is a dot-separated sequence of child names followed by
the socket direction and the socket name, e.g. `pre_action.build_path.outputs.path`.
Names are resolved relative to the action that owns the socket holding the
connection.

This package centralizes parsing and formatting; resolution against a tree
lives with the tree itself.
*/
package connection
