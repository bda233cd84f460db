package core

import (
	"time"

	"github.com/go-drift/flywire/pkg/host"
)

// Disposable is a resource released when its owning component unmounts.
type Disposable interface {
	Dispose()
}

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the component unmounts.
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}

// UseInterval schedules fn every interval on sched and cancels it when the
// component unmounts. Call it from OnMount with ctx.Scheduler.
//
// Example:
//
//	func (a *timerApp) OnMount(ctx *core.Context) error {
//	    core.UseInterval(a, ctx.Scheduler, time.Second, a.tick)
//	    return nil
//	}
func UseInterval(s stateBase, sched host.Scheduler, interval time.Duration, fn func()) host.CancelHandle {
	base := s.state()
	handle := sched.ScheduleRepeating(fn, interval)
	base.OnDispose(func() {
		sched.Cancel(handle)
	})
	return handle
}

// Observe re-notifies s's observers whenever target changes. The
// subscription is removed when s unmounts.
func Observe(s stateBase, target Observable) {
	base := s.state()
	unsub := target.AddObserver(base.Notify)
	base.OnDispose(unsub)
}

// Managed holds a value and notifies observers when it changes.
//
// Managed is NOT thread-safe. It must only be accessed from the engine loop.
//
// Example:
//
//	type counter struct {
//	    core.StateBase
//	    count *core.Managed[int]
//	}
//
//	func newCounter() *counter {
//	    c := &counter{}
//	    c.count = core.NewManaged(c, 0)
//	    return c
//	}
type Managed[T any] struct {
	base  *StateBase
	value T
}

// NewManaged creates a new managed state value.
func NewManaged[T any](s stateBase, initial T) *Managed[T] {
	return &Managed[T]{
		base:  s.state(),
		value: initial,
	}
}

// Value returns the current value.
func (m *Managed[T]) Value() T {
	return m.value
}

// Set updates the value and notifies observers.
func (m *Managed[T]) Set(value T) {
	m.base.Update(func() { m.value = value })
}

// Update applies a transformation to the current value and notifies observers.
func (m *Managed[T]) Update(transform func(T) T) {
	m.base.Update(func() { m.value = transform(m.value) })
}
