package errors

import (
	"log/slog"
)

// LogHandler is an ErrorHandler that writes errors through slog.
type LogHandler struct {
	// Logger receives the records; nil means slog.Default().
	Logger *slog.Logger
	// Verbose adds stack traces to the records.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a CycleError.
func (h *LogHandler) HandleError(err *CycleError) {
	if err == nil {
		return
	}
	h.logger().Error("reconcile failed",
		"op", err.Op,
		"kind", err.Kind.String(),
		"error", err.Err,
	)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("recovered panic", attrs...)
}

// HandleMountError logs a MountHookError at warn level; mount failures
// never stop rendering.
func (h *LogHandler) HandleMountError(err *MountHookError) {
	if err == nil {
		return
	}
	attrs := []any{"component", err.Component, "error", err.Error()}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Warn("mount hook failed", attrs...)
}
