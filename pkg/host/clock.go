// Package host provides the timing collaborators the engine drives:
// a Clock and a Scheduler of repeating callbacks.
//
// Callbacks never run on their own goroutine. The engine calls
// Timers.Step once per loop iteration, so every callback runs on the loop
// goroutine alongside rendering and may mutate component state directly.
package host

import "time"

// Clock provides time for the scheduler. Tests inject a fake clock to
// control timer firing deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock uses system time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
