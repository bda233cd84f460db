package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-drift/flywire/pkg/core"
	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/surface"
	"github.com/go-drift/flywire/pkg/tree"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type captureHandler struct {
	cycles []*errors.CycleError
	panics []*errors.PanicError
	mounts []*errors.MountHookError
}

func (h *captureHandler) HandleError(err *errors.CycleError) { h.cycles = append(h.cycles, err) }
func (h *captureHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }
func (h *captureHandler) HandleMountError(err *errors.MountHookError) { h.mounts = append(h.mounts, err) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	engine  *Engine
	mem     *surface.Memory
	clock   *testClock
	handler *captureHandler
}

func newFixture() *fixture {
	mem := surface.NewMemory(320, 240)
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	handler := &captureHandler{}
	e := New(Options{
		Registry:     mem.Registry(),
		Surface:      mem,
		Clock:        clock,
		Logger:       quietLogger(),
		ErrorHandler: handler,
		Interval:     time.Millisecond,
	})
	return &fixture{engine: e, mem: mem, clock: clock, handler: handler}
}

// counter renders a count label and an increment button.
type counter struct {
	core.StateBase
	count   int
	renders int
}

func (c *counter) increment() {
	c.Update(func() { c.count++ })
}

func (c *counter) Render(tree.Props) tree.Descriptor {
	c.renders++
	return tree.T("Frame", []tree.Descriptor{
		tree.T("Label", fmt.Sprintf("Count: %d", c.count)),
		tree.T("Button", "+", tree.Props{"command": c.increment}),
	})
}

// ticker counts seconds with a host timer started on mount.
type ticker struct {
	core.StateBase
	seconds int
}

func (t *ticker) OnMount(ctx *core.Context) error {
	core.UseInterval(t, ctx.Scheduler, time.Second, func() {
		t.Update(func() { t.seconds++ })
	})
	return nil
}

func (t *ticker) Render(tree.Props) tree.Descriptor {
	return tree.T("Label", fmt.Sprintf("Seconds Elapsed: %d", t.seconds))
}

// probe records its lifecycle and how many widgets were alive when it
// unmounted.
type probe struct {
	core.StateBase
	name             string
	mem              *surface.Memory
	mountErr         error
	mounts, unmounts int
	widgetsAtUnmount int
}

func (p *probe) OnMount(*core.Context) error {
	p.mounts++
	return p.mountErr
}

func (p *probe) OnUnmount() {
	p.unmounts++
	if p.mem != nil {
		p.widgetsAtUnmount = p.mem.Count()
	}
	p.StateBase.OnUnmount()
}

func (p *probe) Render(tree.Props) tree.Descriptor {
	return tree.T("Label", p.name)
}

// toggler shows a header and, when show is set, its child component.
type toggler struct {
	core.StateBase
	show   bool
	child  tree.Component
	broken bool
}

func (t *toggler) set(fn func()) {
	t.Update(fn)
}

func (t *toggler) Render(tree.Props) tree.Descriptor {
	if t.broken {
		return tree.T("Canvas", nil)
	}
	children := []tree.Descriptor{tree.T("Label", "head")}
	if t.show {
		children = append(children, tree.T(t.child, nil))
	}
	return tree.T("Frame", children)
}
