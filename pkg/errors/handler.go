package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler is the global error handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// Handler returns h if non-nil, otherwise the global handler.
func Handler(h ErrorHandler) ErrorHandler {
	if h != nil {
		return h
	}
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to h, or to the global handler when h is nil.
// If err.Timestamp is zero, it is set to the current time.
func Report(h ErrorHandler, err *CycleError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h = Handler(h); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a panic error to h, or to the global handler.
func ReportPanic(h ErrorHandler, err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h = Handler(h); h != nil {
		h.HandlePanic(err)
	}
}

// ReportMountError sends a mount hook failure to h, or to the global handler.
func ReportMountError(h ErrorHandler, err *MountHookError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h = Handler(h); h != nil {
		h.HandleMountError(err)
	}
}

// Recover is a helper for deferred panic recovery.
// Usage: defer errors.Recover(handler, "operation.name")
func Recover(h ErrorHandler, op string) {
	if r := recover(); r != nil {
		ReportPanic(h, &PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
}

// RecoverWithCallback is like Recover but also calls the provided callback
// with the panic value after reporting it.
func RecoverWithCallback(h ErrorHandler, op string, callback func(r any)) {
	if r := recover(); r != nil {
		ReportPanic(h, &PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
		if callback != nil {
			callback(r)
		}
	}
}

// CaptureStack returns the current call stack as a string.
// It skips the frames of CaptureStack and its caller's deferred recover.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
