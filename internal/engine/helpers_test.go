package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/sockettype"
	"github.com/specialistvlad/actiongrid/internal/tree"
)

// recorder collects executor calls across the run goroutine.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type testExecutor struct {
	execute func(ctx context.Context, call *registry.Call) error
	setup   func(ctx context.Context, call *registry.Call) error
	undo    func(ctx context.Context, call *registry.Call) error
}

func (e testExecutor) Execute(ctx context.Context, call *registry.Call) error {
	if e.execute == nil {
		return nil
	}
	return e.execute(ctx, call)
}

func (e testExecutor) Setup(ctx context.Context, call *registry.Call) error {
	if e.setup == nil {
		return nil
	}
	return e.setup(ctx, call)
}

func (e testExecutor) Undo(ctx context.Context, call *registry.Call) error {
	if e.undo == nil {
		return nil
	}
	return e.undo(ctx, call)
}

// failSwitch makes the "flaky" executor fail while set.
type failSwitch struct {
	mu   sync.Mutex
	fail bool
}

func (f *failSwitch) set(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *failSwitch) get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

// newTestRegistry registers:
//
//	record: passes input "in" to output "out" and records the call
//	flaky:  like record, but fails while the switch is set
//	ask:    prompts while input "value" is empty, records the value
//	needs_project: requires the "project" context key
//	bad_output: sets an output it does not declare
//	bad_setup: fails in setup
func newTestRegistry(rec *recorder, flaky *failSwitch) *registry.Registry {
	r := registry.New()
	passSpec := registry.Spec{
		Inputs:  []tree.SocketSpec{{Name: "in", Type: sockettype.Int}},
		Outputs: []tree.SocketSpec{{Name: "out", Type: sockettype.Int}},
	}
	pass := func(call *registry.Call) {
		rec.add(call.Command.Name())
		call.Outputs["out"] = call.Inputs["in"].(int) + 1
	}
	r.RegisterExecutor("record", passSpec, testExecutor{
		execute: func(_ context.Context, call *registry.Call) error {
			pass(call)
			return nil
		},
		undo: func(_ context.Context, call *registry.Call) error {
			rec.add("undo:" + call.Command.Name())
			return nil
		},
	})
	r.RegisterExecutor("flaky", passSpec, testExecutor{
		execute: func(_ context.Context, call *registry.Call) error {
			if flaky != nil && flaky.get() {
				rec.add("fail:" + call.Command.Name())
				return errors.New("flaky executor failed")
			}
			pass(call)
			return nil
		},
	})
	r.RegisterExecutor("ask", registry.Spec{
		Inputs: []tree.SocketSpec{{Name: "value", Type: sockettype.String}},
	}, testExecutor{
		setup: func(_ context.Context, call *registry.Call) error {
			call.Command.SetAskUser(call.Inputs["value"] == "")
			return nil
		},
		execute: func(_ context.Context, call *registry.Call) error {
			rec.add("ask=" + call.Inputs["value"].(string))
			call.Logger.Info("answer received", "value", call.Inputs["value"])
			return nil
		},
	})
	r.RegisterExecutor("needs_project", registry.Spec{RequiredContext: []string{"project"}}, testExecutor{
		execute: func(_ context.Context, call *registry.Call) error {
			rec.add("project=" + call.Context["project"].(string))
			return nil
		},
	})
	r.RegisterExecutor("bad_output", registry.Spec{}, testExecutor{
		execute: func(_ context.Context, call *registry.Call) error {
			call.Outputs["ghost"] = 1
			return nil
		},
	})
	r.RegisterExecutor("bad_setup", registry.Spec{}, testExecutor{
		setup: func(context.Context, *registry.Call) error {
			rec.add("setup")
			return errors.New("no license available")
		},
		execute: func(_ context.Context, call *registry.Call) error {
			rec.add(call.Command.Name())
			return nil
		},
	})
	return r
}

// chainDocument builds one step "main" holding record commands a, b, c
// where each command's input is connected to the previous output.
func chainDocument(definitions ...string) map[string]any {
	names := []string{"a", "b", "c", "d"}
	commands := map[string]any{}
	for i, def := range definitions {
		cmd := map[string]any{"index": i, "definition": def}
		if def == "record" || def == "flaky" {
			input := any(1)
			if i > 0 {
				input = map[string]any{"connection": "main." + names[i-1] + ".outputs.out"}
			}
			cmd["inputs"] = map[string]any{"in": map[string]any{"value": input}}
		}
		commands[names[i]] = cmd
	}
	return map[string]any{
		"steps": map[string]any{
			"main": map[string]any{"index": 0, "commands": commands},
		},
	}
}

func newTestAction(reg *registry.Registry, metadata map[string]any, definitions ...string) *tree.Action {
	a, err := tree.FromDocument("test_action", chainDocument(definitions...), metadata, reg)
	if err != nil {
		panic(err)
	}
	return a
}

func command(a *tree.Action, path string) *tree.Command {
	n, err := a.Find(path)
	if err != nil {
		panic(err)
	}
	return n.(*tree.Command)
}
