// Package errors provides structured error handling for the reconciler.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUnknownWidget indicates a primitive name missing from the registry.
	KindUnknownWidget
	// KindMount indicates a failed component mount hook.
	KindMount
	// KindRender indicates a component render failure.
	KindRender
	// KindPatch indicates a widget surface failure while applying edits.
	KindPatch
	// KindStaleUpdate indicates an edit that no longer fits the retained tree.
	KindStaleUpdate
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownWidget:
		return "unknown_widget"
	case KindMount:
		return "mount"
	case KindRender:
		return "render"
	case KindPatch:
		return "patch"
	case KindStaleUpdate:
		return "stale_update"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// CycleError wraps a failure that ended a reconciliation cycle.
type CycleError struct {
	// Op is the operation that failed (e.g., "engine.Tick").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "host.Timers.Step").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// UnknownWidgetError reports a primitive name that no factory is registered for.
type UnknownWidgetError struct {
	// Name is the unresolved primitive name or kind value.
	Name string
}

func (e *UnknownWidgetError) Error() string {
	return fmt.Sprintf("widget not found: %s", e.Name)
}

// MountHookError reports a component whose OnMount failed. It is recovered:
// the error goes to the handler and normalization continues.
type MountHookError struct {
	// Component is the type name of the component.
	Component string
	// Err is the error returned by OnMount (nil for panics).
	Err error
	// Recovered is the panic value (nil for returned errors).
	Recovered any
	// StackTrace is captured for panics.
	StackTrace string
	// Timestamp is when the hook failed.
	Timestamp time.Time
}

func (e *MountHookError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.OnMount(): %v", e.Component, e.Recovered)
	}
	return fmt.Sprintf("error in %s.OnMount(): %v", e.Component, e.Err)
}

func (e *MountHookError) Unwrap() error {
	return e.Err
}

// RenderError reports a component whose Render panicked or that expanded
// into other components too deeply.
type RenderError struct {
	// Component is the type name of the component.
	Component string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Render(): %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Render(): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Render()", e.Component)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// StaleUpdateError reports an edit whose positional path does not match the
// retained tree.
type StaleUpdateError struct {
	// Op is the edit operation ("add", "remove" or "change").
	Op string
	// Path is the positional path of the edit.
	Path []int
	// Reason says what did not match.
	Reason string
}

func (e *StaleUpdateError) Error() string {
	return fmt.Sprintf("stale %s at %v: %s", e.Op, e.Path, e.Reason)
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	// Path is the configuration file, if any.
	Path string
	// Key is the dotted key that failed (e.g., "engine.interval").
	Key string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// KindOf classifies err by the first typed error found in its chain.
func KindOf(err error) ErrorKind {
	var (
		cycle   *CycleError
		unknown *UnknownWidgetError
		mount   *MountHookError
		render  *RenderError
		stale   *StaleUpdateError
		panicE  *PanicError
		config  *ConfigError
	)
	switch {
	case err == nil:
		return KindUnknown
	case stderrors.As(err, &cycle):
		return cycle.Kind
	case stderrors.As(err, &unknown):
		return KindUnknownWidget
	case stderrors.As(err, &stale):
		return KindStaleUpdate
	case stderrors.As(err, &render):
		return KindRender
	case stderrors.As(err, &mount):
		return KindMount
	case stderrors.As(err, &panicE):
		return KindPanic
	case stderrors.As(err, &config):
		return KindConfig
	default:
		return KindUnknown
	}
}

// ErrorHandler receives errors reported by the reconciler.
type ErrorHandler interface {
	// HandleError is called when a cycle fails.
	HandleError(err *CycleError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleMountError is called when a component's OnMount fails.
	HandleMountError(err *MountHookError)
}
