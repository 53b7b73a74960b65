package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/engine"
	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/internal/resolver"
	"github.com/specialistvlad/actiongrid/internal/tree"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a harness run.
type HarnessResult struct {
	LogOutput   string
	Diagnostics hcl.Diagnostics
	// Err is the resolution, construction or run error, whichever came
	// first.
	Err    error
	Action *tree.Action
}

// Harness describes one run: the definition files to write on a fresh
// search path, the action to resolve and the modules to register.
type Harness struct {
	Files    map[string]string
	Action   string
	Metadata map[string]any
	TaskType string
	Modules  []registry.Module
}

// Run resolves and runs the action to completion with a background context.
func (h Harness) Run(t *testing.T) *HarnessResult {
	t.Helper()
	return h.RunWithContext(context.Background(), t)
}

// RunWithContext resolves and runs the action with the context provided by
// the caller. Set ACTIONGRID_TEST_LOGS=true to print the captured logs.
func (h Harness) RunWithContext(ctx context.Context, t *testing.T) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range h.Files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(Unindent(content)), 0o644))
	}

	logBuffer := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx = ctxlog.WithLogger(ctx, logger)
	t.Cleanup(func() {
		if os.Getenv("ACTIONGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	reg := registry.New()
	require.NoError(t, reg.Load(ctx, h.Modules...))

	result := &HarnessResult{}
	doc, diags, err := resolver.New([]string{dir}, h.TaskType).Resolve(ctx, h.Action)
	result.Diagnostics = diags
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}

	name := strings.TrimSuffix(filepath.Base(h.Action), filepath.Ext(h.Action))
	def, _ := doc[name].(map[string]any)
	action, err := tree.FromDocument(name, def, h.Metadata, reg)
	result.Action = action
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}

	q := engine.New(ctx, action, reg, engine.Options{})
	result.Err = q.Run(ctx, engine.ExecuteOptions{})
	result.LogOutput = logBuffer.String()
	return result
}

// Unindent removes the common leading whitespace from a multi-line string,
// so YAML snippets can be written indented inside Go tests. Tabs count as
// one column, so mixing tabs and spaces is not supported.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.Join(lines, "\n") + "\n"
	}

	var b strings.Builder
	for _, line := range lines {
		if len(line) >= minIndent {
			b.WriteString(line[minIndent:])
		} else {
			b.WriteString(strings.TrimSpace(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
