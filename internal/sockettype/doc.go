// Package sockettype describes the value types a socket can hold. Every type
// provides a default value, a cast that validates and normalizes incoming
// values, and a serializable description for remote observers.
//
// Casting is delegated to go-cty: values are lifted into cty, converted to
// the target cty type and lowered back into plain Go values, so a socket
// accepts the same loose inputs as the rest of the configuration layer
// (e.g. the string "3" for an int socket).
package sockettype
