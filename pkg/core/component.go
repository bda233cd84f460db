package core

import (
	"log/slog"

	"github.com/go-drift/flywire/pkg/host"
)

// Context is handed to OnMount. It is owned by the engine that mounted the
// component.
type Context struct {
	// Scheduler runs repeating callbacks on the engine loop.
	Scheduler host.Scheduler
	// Logger is the engine's logger.
	Logger *slog.Logger
}

// Mounter is implemented by components that need setup when they enter
// the tree. A returned error is reported but does not stop rendering.
type Mounter interface {
	OnMount(ctx *Context) error
}

// Unmounter is implemented by components that release resources when they
// leave the tree. Timers and subscriptions started in OnMount must stop here.
type Unmounter interface {
	OnUnmount()
}

// Observable is implemented by components whose state changes should
// trigger a re-render. AddObserver returns a function that removes fn.
type Observable interface {
	AddObserver(fn func()) (remove func())
}
