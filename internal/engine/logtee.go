package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/actiongrid/internal/tree"
)

// commandLogHandler forwards records to next and appends those at Info
// level and above to the logs of a command. Attributes bound with With are
// only forwarded; the command log gets the message and the record's own
// attributes.
type commandLogHandler struct {
	next    slog.Handler
	command *tree.Command
}

func newCommandLogHandler(next slog.Handler, command *tree.Command) *commandLogHandler {
	return &commandLogHandler{next: next, command: command}
}

func (h *commandLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo || h.next.Enabled(ctx, level)
}

func (h *commandLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelInfo {
		h.command.AppendLog(r.Level.String(), formatRecord(r))
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *commandLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &commandLogHandler{next: h.next.WithAttrs(attrs), command: h.command}
}

func (h *commandLogHandler) WithGroup(name string) slog.Handler {
	return &commandLogHandler{next: h.next.WithGroup(name), command: h.command}
}

func formatRecord(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	return b.String()
}
