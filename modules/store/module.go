// Package store passes values between commands through the key/value store
// of their step.
package store

import (
	"context"
	"fmt"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

const (
	OperationSet = "set"
	OperationGet = "get"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Executor reads or writes one key of the step store.
type Executor struct{}

func (Executor) Execute(ctx context.Context, call *registry.Call) error {
	key, _ := call.Inputs["key"].(string)
	if key == "" {
		return fmt.Errorf("store: empty key")
	}
	switch op := call.Inputs["operation"]; op {
	case OperationSet:
		call.Store.Set(key, call.Inputs["value"])
		call.Outputs["value"] = call.Inputs["value"]
		call.Logger.Info("Stored value", "key", key)
	case OperationGet:
		v, ok := call.Store.Get(key)
		if !ok {
			call.Logger.Warn("Key not found in store.", "key", key)
		}
		call.Outputs["value"] = v
	default:
		return fmt.Errorf("store: unknown operation %v", op)
	}
	return nil
}

// Undo removes the key written by a set.
func (Executor) Undo(ctx context.Context, call *registry.Call) error {
	if call.Inputs["operation"] != OperationSet {
		return nil
	}
	key, _ := call.Inputs["key"].(string)
	call.Store.Delete(key)
	return nil
}

// Register registers the executor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor("store", registry.Spec{
		Inputs: []tree.SocketSpec{
			{Name: "operation", Type: sockettype.Select{Options: []string{OperationSet, OperationGet}}},
			{Name: "key", Type: sockettype.String},
			{Name: "value", Type: sockettype.Any},
		},
		Outputs: []tree.SocketSpec{
			{Name: "value", Type: sockettype.Any},
		},
	}, Executor{})
}
