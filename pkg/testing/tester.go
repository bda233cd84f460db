package testing

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/flywire/pkg/engine"
	flyerrors "github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/surface"
	"github.com/go-drift/flywire/pkg/tree"
)

// Default surface dimensions for tests.
const (
	DefaultTestWidth  = 800
	DefaultTestHeight = 600
)

// DefaultStep is the clock advance used by PumpAndSettle between ticks.
const DefaultStep = 100 * time.Millisecond

// ErrSettleTimeout is returned by PumpAndSettle when the tree keeps
// changing past the timeout.
var ErrSettleTimeout = errors.New("pump and settle timed out")

// Tester mounts a component tree on an in-memory surface and drives the
// engine loop by hand. Time only moves when the test advances the clock.
type Tester struct {
	engine  *engine.Engine
	surface *surface.Memory
	clock   *FakeClock
	errors  *RecordingHandler
}

// NewTester creates a Tester with a fresh memory surface and fake clock.
// Call Cleanup when done, or use NewTesterWithT.
func NewTester() *Tester {
	mem := surface.NewMemory(DefaultTestWidth, DefaultTestHeight)
	clock := NewFakeClock()
	handler := &RecordingHandler{}
	e := engine.New(engine.Options{
		Registry:     mem.Registry(),
		Surface:      mem,
		Clock:        clock,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		ErrorHandler: handler,
	})
	return &Tester{engine: e, surface: mem, clock: clock, errors: handler}
}

// NewTesterWithT creates a Tester that unmounts when the test ends.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree, running every OnUnmount and destroying every
// widget.
func (t *Tester) Cleanup() {
	t.engine.Unmount()
}

// Engine returns the engine under test.
func (t *Tester) Engine() *engine.Engine { return t.engine }

// Surface returns the memory surface hosting the widgets.
func (t *Tester) Surface() *surface.Memory { return t.surface }

// Clock returns the fake clock driving host timers.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Errors returns everything reported to the engine's error handler.
func (t *Tester) Errors() *RecordingHandler { return t.errors }

// Mount performs the initial render of root.
func (t *Tester) Mount(root tree.Descriptor) error {
	return t.engine.Mount(root)
}

// Tree returns the retained node tree.
func (t *Tester) Tree() *tree.Node {
	return t.engine.Tree()
}

// Pump runs one loop iteration without moving the clock and reports
// whether a cycle ran.
func (t *Tester) Pump() (bool, error) {
	return t.engine.Tick()
}

// Advance moves the clock forward by d and pumps once.
func (t *Tester) Advance(d time.Duration) (bool, error) {
	t.clock.Advance(d)
	return t.Pump()
}

// PumpFor advances the clock by step until d has elapsed, pumping after
// every step, and returns how many cycles ran.
func (t *Tester) PumpFor(d, step time.Duration) (int, error) {
	if step <= 0 {
		step = DefaultStep
	}
	cycles := 0
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		ran, err := t.Advance(step)
		if err != nil {
			return cycles, err
		}
		if ran {
			cycles++
		}
	}
	return cycles, nil
}

// PumpAndSettle pumps until a tick produces no cycle and no timer is
// pending, advancing the clock by DefaultStep between ticks. Returns
// ErrSettleTimeout if that does not happen within timeout of fake time.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed <= timeout {
		ran, err := t.Pump()
		if err != nil {
			return err
		}
		if !ran && !t.needsWork() {
			return nil
		}
		t.clock.Advance(DefaultStep)
		elapsed += DefaultStep
	}
	return ErrSettleTimeout
}

func (t *Tester) needsWork() bool {
	return t.engine.Dirty() || t.engine.Timers().Active() > 0
}

// Dispatch queues fn for the next Pump, mirroring engine.Dispatch.
func (t *Tester) Dispatch(fn func()) {
	t.engine.Dispatch(fn)
}

// Click invokes the command of the first Button showing text and pumps.
// It reports false if no such button exists.
func (t *Tester) Click(text string) (bool, error) {
	if !t.surface.Click(text) {
		return false, nil
	}
	_, err := t.Pump()
	return true, err
}

// Find evaluates finder against the retained tree.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{nodes: finder.Evaluate(t.Tree()), finder: finder}
}

// RecordingHandler is an ErrorHandler that keeps everything it receives.
// It is safe for concurrent use.
type RecordingHandler struct {
	mu     sync.Mutex
	cycles []*flyerrors.CycleError
	panics []*flyerrors.PanicError
	mounts []*flyerrors.MountHookError
}

func (h *RecordingHandler) HandleError(err *flyerrors.CycleError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cycles = append(h.cycles, err)
}

func (h *RecordingHandler) HandlePanic(err *flyerrors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *RecordingHandler) HandleMountError(err *flyerrors.MountHookError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mounts = append(h.mounts, err)
}

// Cycles returns the reported cycle errors.
func (h *RecordingHandler) Cycles() []*flyerrors.CycleError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*flyerrors.CycleError(nil), h.cycles...)
}

// Panics returns the reported recovered panics.
func (h *RecordingHandler) Panics() []*flyerrors.PanicError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*flyerrors.PanicError(nil), h.panics...)
}

// Mounts returns the reported mount hook failures.
func (h *RecordingHandler) Mounts() []*flyerrors.MountHookError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*flyerrors.MountHookError(nil), h.mounts...)
}

// Len returns the total number of reports.
func (h *RecordingHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cycles) + len(h.panics) + len(h.mounts)
}
