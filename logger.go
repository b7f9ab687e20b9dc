package imdraw

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for imdraw and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent logger.
//
// Log levels used by imdraw:
//   - [slog.LevelDebug]: pipeline creation, atlas and buffer sizes
//   - [slog.LevelInfo]: output reconfiguration
//   - [slog.LevelWarn]: staging overflow (primitive list clamped)
//
// Example:
//
//	imdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. The render and font packages call it
// at log time, so SetLogger takes effect immediately everywhere.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
