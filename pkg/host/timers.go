package host

import (
	"slices"
	"sync"
	"time"
)

// CancelHandle identifies a scheduled repeating callback.
type CancelHandle uint64

// Scheduler schedules repeating callbacks. Components receive one through
// core.Context at mount time and cancel what they scheduled at unmount.
type Scheduler interface {
	ScheduleRepeating(callback func(), interval time.Duration) CancelHandle
	Cancel(handle CancelHandle)
}

type timer struct {
	id       CancelHandle
	callback func()
	interval time.Duration
	next     time.Time
}

// Timers is a Scheduler whose callbacks fire from Step.
// Scheduling and cancelling are safe from any goroutine.
type Timers struct {
	clock  Clock
	mu     sync.Mutex
	nextID CancelHandle
	active map[CancelHandle]*timer
}

// NewTimers creates a scheduler reading time from clock. A nil clock
// means SystemClock.
func NewTimers(clock Clock) *Timers {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timers{
		clock:  clock,
		active: make(map[CancelHandle]*timer),
	}
}

// ScheduleRepeating arranges for callback to run every interval, starting
// one interval from now. Non-positive intervals are clamped to one
// nanosecond so a timer fires at most once per Step.
func (t *Timers) ScheduleRepeating(callback func(), interval time.Duration) CancelHandle {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.active[id] = &timer{
		id:       id,
		callback: callback,
		interval: interval,
		next:     t.clock.Now().Add(interval),
	}
	return id
}

// Cancel stops a scheduled callback. Unknown or already cancelled handles
// are ignored.
func (t *Timers) Cancel(handle CancelHandle) {
	t.mu.Lock()
	delete(t.active, handle)
	t.mu.Unlock()
}

// Active returns the number of scheduled callbacks.
func (t *Timers) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Step runs every callback that is due, earliest first, and returns how
// many ran. Each timer fires at most once per Step; a timer that fell more
// than one interval behind is rescheduled relative to now.
func (t *Timers) Step() int {
	now := t.clock.Now()

	t.mu.Lock()
	var due []*timer
	for _, tm := range t.active {
		if !tm.next.After(now) {
			due = append(due, tm)
		}
	}
	t.mu.Unlock()

	slices.SortFunc(due, func(a, b *timer) int {
		if c := a.next.Compare(b.next); c != 0 {
			return c
		}
		return int(a.id) - int(b.id)
	})

	fired := 0
	for _, tm := range due {
		// A callback earlier in this step may have cancelled tm.
		t.mu.Lock()
		_, live := t.active[tm.id]
		if live {
			tm.next = tm.next.Add(tm.interval)
			if !tm.next.After(now) {
				tm.next = now.Add(tm.interval)
			}
		}
		t.mu.Unlock()
		if !live {
			continue
		}
		tm.callback()
		fired++
	}
	return fired
}

// CancelAll drops every scheduled callback.
func (t *Timers) CancelAll() {
	t.mu.Lock()
	clear(t.active)
	t.mu.Unlock()
}
