// Package mdlog provides the structured logger every component writes to.
// It never touches stdout/stderr, since those are reserved for the
// JSON-RPC stream; output goes to a sidecar file or is discarded in tests.
package mdlog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// Options configures the sidecar log sink.
type Options struct {
	// Path to the sidecar log file. Empty means discard (NewNop semantics).
	Path string
	// JSON selects slog.JSONHandler over slog.TextHandler.
	JSON bool
	// Verbose raises the level from Info to Debug.
	Verbose bool
}

// New builds a logger per Options, opening Path in append mode. If Path is
// empty, logging is discarded.
func New(opts Options) (*slog.Logger, error) {
	var w io.Writer = io.Discard
	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), nil
}

// NewNop returns a logger that discards everything, for call sites that
// have no context-scoped logger available yet.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTest returns a logger backed by w (typically a test's captured
// buffer), so a test can assert on emitted log lines without touching the
// filesystem.
func NewTest(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// ContextWithLogger returns a context carrying logger, retrievable via
// FromContext.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or NewNop() if none was
// attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return NewNop()
}
