package core

import (
	"testing"
	"time"

	"github.com/go-drift/flywire/pkg/host"
)

// mockDisposable for testing UseController
type mockDisposable struct {
	disposed bool
}

func (m *mockDisposable) Dispose() {
	m.disposed = true
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func TestUseController(t *testing.T) {
	base := &StateBase{}

	controller := UseController(base, func() *mockDisposable {
		return &mockDisposable{}
	})

	if controller.disposed {
		t.Error("Controller should not be disposed initially")
	}

	base.OnUnmount()

	if !controller.disposed {
		t.Error("Controller should be disposed when the component unmounts")
	}
}

func TestUseInterval_CancelledOnUnmount(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	timers := host.NewTimers(clock)
	base := &StateBase{}
	ticks := 0

	UseInterval(base, timers, time.Second, func() { ticks++ })

	clock.now = clock.now.Add(time.Second)
	timers.Step()
	if ticks != 1 {
		t.Fatalf("ticks = %d, want 1", ticks)
	}

	base.OnUnmount()
	if timers.Active() != 0 {
		t.Errorf("Active() = %d after unmount, want 0", timers.Active())
	}
	clock.now = clock.now.Add(time.Second)
	timers.Step()
	if ticks != 1 {
		t.Errorf("ticks = %d after unmount, want 1", ticks)
	}
}

func TestObserve(t *testing.T) {
	source := &StateBase{}
	base := &StateBase{}
	notified := 0
	base.AddObserver(func() { notified++ })

	Observe(base, source)

	source.Update(nil)
	if notified != 1 {
		t.Fatalf("notified = %d, want 1", notified)
	}

	base.OnUnmount()
	if source.ObserverCount() != 0 {
		t.Errorf("Expected 0 observers on source after unmount, got %d", source.ObserverCount())
	}
}

func TestManaged_Value(t *testing.T) {
	base := &StateBase{}
	state := NewManaged(base, 42)

	if state.Value() != 42 {
		t.Errorf("Expected 42, got %d", state.Value())
	}
}

func TestManaged_SetNotifies(t *testing.T) {
	base := &StateBase{}
	state := NewManaged(base, 0)
	notified := 0
	seen := -1
	base.AddObserver(func() {
		notified++
		seen = state.Value()
	})

	state.Set(100)

	if state.Value() != 100 {
		t.Errorf("Expected 100, got %d", state.Value())
	}
	if notified != 1 || seen != 100 {
		t.Errorf("observer ran %d times and saw %d, want 1 and 100", notified, seen)
	}
}

func TestManaged_Update(t *testing.T) {
	base := &StateBase{}
	state := NewManaged(base, 10)

	state.Update(func(v int) int { return v * 2 })

	if state.Value() != 20 {
		t.Errorf("Expected 20, got %d", state.Value())
	}
}

func TestManaged_StructType(t *testing.T) {
	type Person struct {
		Name string
		Age  int
	}

	base := &StateBase{}
	state := NewManaged(base, Person{Name: "Alice", Age: 30})

	state.Update(func(p Person) Person {
		p.Age++
		return p
	})

	if state.Value().Age != 31 {
		t.Errorf("Expected age 31, got %d", state.Value().Age)
	}
}
