package tree

import "errors"

var (
	// ErrConnection is returned (wrapped) when a socket connection cannot be
	// resolved.
	ErrConnection = errors.New("connection resolution failed")
	// ErrNotFound is returned when a node lookup by path fails.
	ErrNotFound = errors.New("node not found")
	// ErrInvalidDocument is returned when a document field has the wrong shape.
	ErrInvalidDocument = errors.New("invalid document")
)
