// Package engine drives reconciliation: it owns the root descriptor, the
// retained node tree and the widget surface, and runs one
// normalize, diff and patch cycle per loop iteration whenever a component
// invalidated since the last one.
//
// Everything except Dispatch, Stop, Snapshot, Stats and the debug server
// must be called from the loop goroutine.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/flywire/pkg/core"
	"github.com/go-drift/flywire/pkg/diff"
	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/host"
	"github.com/go-drift/flywire/pkg/patch"
	"github.com/go-drift/flywire/pkg/tree"
	"github.com/go-drift/flywire/pkg/widget"
)

// DefaultInterval is the pause between loop iterations.
const DefaultInterval = 100 * time.Millisecond

// State is the engine lifecycle state.
type State int32

const (
	StateUnmounted State = iota
	StateMounted
	StateRunning
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounted:
		return "mounted"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configures an Engine.
type Options struct {
	// Registry resolves and materializes primitives. Required.
	Registry *widget.Registry
	// Surface hosts the widgets. May be nil for headless use.
	Surface widget.Surface
	// Interval is the pause between loop iterations in Start.
	Interval time.Duration
	// Clock drives host timers.
	Clock host.Clock
	// Logger receives engine and component logs.
	Logger *slog.Logger
	// ErrorHandler receives cycle errors, recovered panics and mount
	// failures. Nil means the package default of pkg/errors.
	ErrorHandler errors.ErrorHandler
	// MaxDepth bounds component expansion; see core.DefaultMaxDepth.
	MaxDepth int
	// TraceSamples is the number of cycle samples kept for the debug
	// server.
	TraceSamples int
	// RuntimeSampleInterval is how often the debug server samples memory
	// and GC stats. Zero means every five seconds.
	RuntimeSampleInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = widget.NewRegistry()
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Clock == nil {
		o.Clock = host.SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Stats are cumulative engine counters.
type Stats struct {
	Cycles    uint64        `json:"cycles"`
	Adds      uint64        `json:"adds"`
	Removes   uint64        `json:"removes"`
	Changes   uint64        `json:"changes"`
	Errors    uint64        `json:"errors"`
	Nodes     int           `json:"nodes"`
	Mounted   int           `json:"mounted"`
	LastCycle time.Duration `json:"lastCycleNs"`
}

// Engine is the reconciler and scheduler for one tree.
type Engine struct {
	opts       Options
	logger     *slog.Logger
	timers     *host.Timers
	lifecycle  *core.Lifecycle
	normalizer *core.Normalizer
	patcher    *patch.Patcher

	state   atomic.Int32
	dirty   atomic.Bool
	stop    atomic.Bool
	wake    chan struct{}
	inCycle bool

	root     tree.Descriptor
	retained *tree.Node

	dispatchMu    sync.Mutex
	dispatchQueue []func()

	statsMu  sync.Mutex
	stats    Stats
	snapshot atomic.Pointer[tree.Record]
	trace    *CycleTraceBuffer

	debug debugServer
}

// New creates an unmounted engine.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts:   opts,
		logger: opts.Logger,
		timers: host.NewTimers(opts.Clock),
		wake:   make(chan struct{}, 1),
		trace:  NewCycleTraceBuffer(opts.TraceSamples, opts.Interval),
	}
	ctx := &core.Context{Scheduler: e.timers, Logger: opts.Logger}
	e.lifecycle = core.NewLifecycle(ctx, e.Invalidate, opts.ErrorHandler)
	e.normalizer = &core.Normalizer{Resolver: opts.Registry, Lifecycle: e.lifecycle, MaxDepth: opts.MaxDepth}
	e.patcher = &patch.Patcher{Registry: opts.Registry, Surface: opts.Surface}
	if opts.Surface != nil {
		opts.Surface.OnResize(func(width, height int) {
			e.logger.Debug("surface resized", "width", width, "height", height)
			e.Invalidate()
		})
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Timers returns the host scheduler components receive through their
// mount context.
func (e *Engine) Timers() *host.Timers {
	return e.timers
}

// Lifecycle returns the component mount tracker.
func (e *Engine) Lifecycle() *core.Lifecycle {
	return e.lifecycle
}

// Tree returns the retained tree. Loop goroutine only.
func (e *Engine) Tree() *tree.Node {
	return e.retained
}

// Snapshot returns the retained tree as of the last completed cycle, or nil
// before the first one.
func (e *Engine) Snapshot() *tree.Record {
	return e.snapshot.Load()
}

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// Trace returns the recent cycle samples.
func (e *Engine) Trace() *CycleTraceBuffer {
	return e.trace
}

// Invalidate marks the tree dirty. The next Tick runs a cycle. It never
// runs a cycle itself and is safe from any goroutine.
func (e *Engine) Invalidate() {
	e.dirty.Store(true)
}

// Dirty reports whether a cycle is pending.
func (e *Engine) Dirty() bool {
	return e.dirty.Load()
}

// Dispatch queues fn to run on the loop goroutine at the start of the next
// Tick. Safe from any goroutine.
func (e *Engine) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	e.dispatchMu.Lock()
	e.dispatchQueue = append(e.dispatchQueue, fn)
	e.dispatchMu.Unlock()
	e.signal()
}

func (e *Engine) drainDispatchQueue() []func() {
	e.dispatchMu.Lock()
	callbacks := e.dispatchQueue
	e.dispatchQueue = nil
	e.dispatchMu.Unlock()
	return callbacks
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Mount renders root for the first time and materializes it on the
// surface.
func (e *Engine) Mount(root tree.Descriptor) error {
	if e.State() != StateUnmounted {
		return fmt.Errorf("engine: mount in state %s", e.State())
	}
	e.root = root
	e.dirty.Store(false)
	if err := e.cycle("engine.Mount"); err != nil {
		e.release()
		return err
	}
	e.state.Store(int32(StateMounted))
	e.logger.Debug("engine mounted", "nodes", e.retained.Count(), "components", e.lifecycle.Len())
	return nil
}

// Tick runs one loop iteration: queued dispatch callbacks, due host
// timers, then a cycle if the tree is dirty. It reports whether a cycle
// ran. A Tick from inside a cycle only marks the tree dirty.
func (e *Engine) Tick() (bool, error) {
	if e.inCycle {
		e.Invalidate()
		return false, nil
	}
	if s := e.State(); s != StateMounted && s != StateRunning {
		return false, nil
	}
	for _, callback := range e.drainDispatchQueue() {
		e.run("engine.Dispatch", callback)
	}
	e.run("host.Timers.Step", func() { e.timers.Step() })

	if !e.dirty.Swap(false) {
		return false, nil
	}
	return true, e.cycle("engine.Tick")
}

// run calls fn, turning a panic into a reported PanicError.
func (e *Engine) run(op string, fn func()) {
	defer errors.Recover(e.opts.ErrorHandler, op)
	fn()
}

// Start runs the loop until Stop, ctx cancellation or a cycle error, then
// tears down. It returns the cycle error, if any.
func (e *Engine) Start(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(StateMounted), int32(StateRunning)) {
		return fmt.Errorf("engine: start in state %s", e.State())
	}
	defer e.teardown()
	e.logger.Info("engine running", "interval", e.opts.Interval)

	timer := time.NewTimer(e.opts.Interval)
	defer timer.Stop()
	for {
		if e.stop.Load() || ctx.Err() != nil {
			return nil
		}
		if _, err := e.Tick(); err != nil {
			return err
		}
		if e.stop.Load() {
			return nil
		}

		timer.Reset(e.opts.Interval)
		select {
		case <-ctx.Done():
		case <-e.wake:
		case <-timer.C:
		}
	}
}

// Stop asks a running loop to exit before its next iteration. Safe from any
// goroutine.
func (e *Engine) Stop() {
	e.stop.Store(true)
	e.signal()
}

// Unmount tears down an engine that was mounted but never started.
func (e *Engine) Unmount() {
	if e.state.CompareAndSwap(int32(StateMounted), int32(StateStopped)) {
		e.release()
		e.logger.Debug("engine unmounted")
	}
}

func (e *Engine) teardown() {
	e.state.Store(int32(StateStopped))
	e.release()
	e.logger.Info("engine stopped", "cycles", e.Stats().Cycles)
}

// release unmounts every live component, most recent first, then destroys
// every widget.
func (e *Engine) release() {
	e.lifecycle.UnmountAll()
	e.timers.CancelAll()
	patch.Destroy(e.retained)
	e.retained = nil
}

// cycle runs normalize, diff and patch against the retained tree.
func (e *Engine) cycle(op string) error {
	e.inCycle = true
	defer func() { e.inCycle = false }()

	var sample CycleSample
	start := time.Now()
	sample.Timestamp = start.UnixMilli()

	next, err := e.normalizer.Normalize(e.root)
	sample.Phases.NormalizeMs = durationToMillis(time.Since(start))
	if err != nil {
		return e.fail(op, err, sample, start)
	}

	phase := time.Now()
	script := diff.Diff(e.retained, next)
	sample.Phases.DiffMs = durationToMillis(time.Since(phase))

	phase = time.Now()
	e.patcher.Lifecycle = e.lifecycle.Pruner(next)
	retained, err := e.patcher.Apply(script, e.retained)
	e.patcher.Lifecycle = nil
	e.retained = retained
	sample.Phases.PatchMs = durationToMillis(time.Since(phase))
	if err != nil {
		return e.fail(op, err, sample, start)
	}
	rebound := patch.Rebind(e.retained, next)
	tree.CopyOwners(e.retained, next)

	phase = time.Now()
	e.lifecycle.Sweep(next)
	sample.Phases.SweepMs = durationToMillis(time.Since(phase))

	if !script.Empty() && e.opts.Surface != nil {
		e.opts.Surface.RequestRedraw()
	}

	adds, removes, changes := script.Counts()
	elapsed := time.Since(start)
	sample.CycleMs = durationToMillis(elapsed)
	sample.Counts = CycleCounts{
		Adds:    adds,
		Removes: removes,
		Changes: changes,
		Nodes:   e.retained.Count(),
		Mounted: e.lifecycle.Len(),
	}
	e.trace.Add(sample, elapsed)
	e.snapshot.Store(tree.RecordOf(e.retained))

	e.statsMu.Lock()
	e.stats.Cycles++
	e.stats.Adds += uint64(adds)
	e.stats.Removes += uint64(removes)
	e.stats.Changes += uint64(changes)
	e.stats.Nodes = sample.Counts.Nodes
	e.stats.Mounted = sample.Counts.Mounted
	e.stats.LastCycle = elapsed
	e.statsMu.Unlock()

	e.logger.Debug("cycle complete", "op", op, "adds", adds, "removes", removes, "changes", changes, "rebound", rebound, "duration", elapsed)
	return nil
}

func (e *Engine) fail(op string, err error, sample CycleSample, start time.Time) error {
	elapsed := time.Since(start)
	sample.CycleMs = durationToMillis(elapsed)
	sample.Error = err.Error()
	e.trace.Add(sample, elapsed)

	e.statsMu.Lock()
	e.stats.Errors++
	e.statsMu.Unlock()

	cycleErr := &errors.CycleError{
		Op:        op,
		Kind:      errors.KindOf(err),
		Err:       err,
		Timestamp: time.Now(),
	}
	errors.Report(e.opts.ErrorHandler, cycleErr)
	return cycleErr
}
