// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lifecycle of a run: resolving action
// definitions, building their trees and executing them, decoupled from any
// specific entrypoint like a CLI or server.
package app
