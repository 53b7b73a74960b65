// Package resolver loads action definitions from YAML files found on a
// search path.
//
// Definition files are plain YAML extended with four tags:
//
//	!include file[.key]        splice another file's content, optionally a nested key
//	!inherit {parent, key?, category?, ...}
//	                           load the parent node and merge the remaining keys over it
//	!connect-in  path          a connection to an input socket
//	!connect-out path          a connection to an output socket
//
// A file named after the action holds `{<action>: {steps: ..., tasks: ...}}`.
// When the resolver has a task type, `tasks.<type>` is merged over the
// definition. Problems are reported as hcl.Diagnostics and the affected node
// degrades to its unmerged content; only a missing or unreadable action file
// is an error.
package resolver
