package core

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/tree"
)

type disposable interface {
	IsDisposed() bool
}

type mountRecord struct {
	unsubscribe func()
}

// Lifecycle tracks mounted component instances and runs their hooks.
//
// Only comparable component values (in practice pointers) that implement
// Mounter, Unmounter or Observable are tracked; everything else is treated
// as stateless and re-rendered freely.
type Lifecycle struct {
	// Context is handed to every OnMount.
	Context *Context
	// Invalidate is registered as an observer on every mounted Observable.
	Invalidate func()
	// Errors receives recovered mount and unmount failures. Nil means the
	// global handler.
	Errors errors.ErrorHandler

	mounted map[tree.Component]*mountRecord
	order   []tree.Component
}

// NewLifecycle creates a tracker.
func NewLifecycle(ctx *Context, invalidate func(), handler errors.ErrorHandler) *Lifecycle {
	if ctx == nil {
		ctx = &Context{}
	}
	return &Lifecycle{
		Context:    ctx,
		Invalidate: invalidate,
		Errors:     handler,
		mounted:    make(map[tree.Component]*mountRecord),
	}
}

// Tracked reports whether c takes part in lifecycle tracking.
func Tracked(c tree.Component) bool {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		return false
	}
	_, mounter := c.(Mounter)
	_, unmounter := c.(Unmounter)
	_, observable := c.(Observable)
	return mounter || unmounter || observable
}

// Mount subscribes Invalidate to c and runs its OnMount, unless c is already
// mounted, disposed or not tracked. It reports whether c was newly mounted.
func (l *Lifecycle) Mount(c tree.Component) bool {
	if !Tracked(c) {
		return false
	}
	if l.mounted == nil {
		l.mounted = make(map[tree.Component]*mountRecord)
	}
	if _, ok := l.mounted[c]; ok {
		return false
	}
	if d, ok := c.(disposable); ok && d.IsDisposed() {
		// Unmounted once already; it renders but never mounts again.
		if l.Context != nil && l.Context.Logger != nil {
			l.Context.Logger.Debug("rendering disposed component; it will not mount or re-render on Update",
				"component", fmt.Sprintf("%T", c))
		}
		return false
	}
	record := &mountRecord{}
	l.mounted[c] = record
	l.order = append(l.order, c)

	if obs, ok := c.(Observable); ok && l.Invalidate != nil {
		record.unsubscribe = obs.AddObserver(l.Invalidate)
	}
	if m, ok := c.(Mounter); ok {
		l.runMount(c, m)
	}
	return true
}

// runMount is the recovered boundary around a single OnMount.
func (l *Lifecycle) runMount(c tree.Component, m Mounter) {
	component := fmt.Sprintf("%T", c)
	defer func() {
		if r := recover(); r != nil {
			errors.ReportMountError(l.Errors, &errors.MountHookError{
				Component:  component,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	if err := m.OnMount(l.Context); err != nil {
		errors.ReportMountError(l.Errors, &errors.MountHookError{
			Component: component,
			Err:       err,
			Timestamp: time.Now(),
		})
	}
}

// Unmount unsubscribes c and runs its OnUnmount. It reports whether c was
// mounted; unmounting twice is a no-op.
func (l *Lifecycle) Unmount(c tree.Component) bool {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		return false
	}
	record, ok := l.mounted[c]
	if !ok {
		return false
	}
	delete(l.mounted, c)
	if i := slices.Index(l.order, c); i >= 0 {
		l.order = slices.Delete(l.order, i, i+1)
	}

	if record.unsubscribe != nil {
		record.unsubscribe()
	}
	if u, ok := c.(Unmounter); ok {
		func() {
			defer errors.Recover(l.Errors, fmt.Sprintf("%T.OnUnmount", c))
			u.OnUnmount()
		}()
	}
	return true
}

// IsMounted reports whether c is currently mounted.
func (l *Lifecycle) IsMounted(c tree.Component) bool {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		return false
	}
	_, ok := l.mounted[c]
	return ok
}

// Len returns the number of mounted components.
func (l *Lifecycle) Len() int {
	return len(l.mounted)
}

// Sweep unmounts every mounted component that no node of root names as an
// owner, most recently mounted first. It returns how many were unmounted.
func (l *Lifecycle) Sweep(root *tree.Node) int {
	if len(l.mounted) == 0 {
		return 0
	}
	live := liveSet(root)

	var stale []tree.Component
	for i := len(l.order) - 1; i >= 0; i-- {
		if !live[l.order[i]] {
			stale = append(stale, l.order[i])
		}
	}
	for _, c := range stale {
		l.Unmount(c)
	}
	return len(stale)
}

// UnmountAll unmounts every component, most recently mounted first.
func (l *Lifecycle) UnmountAll() int {
	count := 0
	for len(l.order) > 0 {
		c := l.order[len(l.order)-1]
		if l.Unmount(c) {
			count++
		} else {
			l.order = l.order[:len(l.order)-1]
		}
	}
	return count
}

func liveSet(root *tree.Node) map[tree.Component]bool {
	live := make(map[tree.Component]bool)
	root.Walk(func(n *tree.Node, _ []int) bool {
		for _, owner := range n.Owners {
			if Tracked(owner) {
				live[owner] = true
			}
		}
		return true
	})
	return live
}

// Pruner unmounts components whose subtrees are released during a patch,
// leaving alone the ones the next tree still renders.
type Pruner struct {
	lifecycle *Lifecycle
	live      map[tree.Component]bool
}

// Pruner returns a Pruner that keeps every component owning a node of next.
func (l *Lifecycle) Pruner(next *tree.Node) *Pruner {
	return &Pruner{lifecycle: l, live: liveSet(next)}
}

// Unmount unmounts c unless it is still live.
func (p *Pruner) Unmount(c tree.Component) bool {
	if !Tracked(c) || p.live[c] {
		return false
	}
	return p.lifecycle.Unmount(c)
}
