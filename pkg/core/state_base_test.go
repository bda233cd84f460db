package core

import "testing"

func TestStateBase_UpdateNotifiesBeforeReturning(t *testing.T) {
	s := &StateBase{}
	value := 0
	var seen []int
	s.AddObserver(func() { seen = append(seen, value) })
	s.AddObserver(func() { seen = append(seen, value*10) })

	s.Update(func() { value = 3 })

	if len(seen) != 2 || seen[0] != 3 || seen[1] != 30 {
		t.Errorf("observers saw %v, want [3 30]", seen)
	}
}

func TestStateBase_RemoveObserver(t *testing.T) {
	s := &StateBase{}
	calls := 0
	remove := s.AddObserver(func() { calls++ })
	remove()
	remove()

	s.Update(nil)
	if calls != 0 {
		t.Errorf("removed observer called %d times", calls)
	}
	if s.ObserverCount() != 0 {
		t.Errorf("ObserverCount() = %d, want 0", s.ObserverCount())
	}
}

func TestStateBase_ObserverRemovingItselfDuringNotify(t *testing.T) {
	s := &StateBase{}
	calls := 0
	var remove func()
	remove = s.AddObserver(func() {
		calls++
		remove()
	})
	other := 0
	s.AddObserver(func() { other++ })

	s.Update(nil)
	s.Update(nil)

	if calls != 1 || other != 2 {
		t.Errorf("calls = %d, other = %d, want 1 and 2", calls, other)
	}
}

func TestStateBase_DisposersRunLIFOOnce(t *testing.T) {
	s := &StateBase{}
	var order []int
	s.OnDispose(func() { order = append(order, 1) })
	unregister := s.OnDispose(func() { order = append(order, 2) })
	s.OnDispose(func() { order = append(order, 3) })
	unregister()

	s.OnUnmount()
	s.OnUnmount()

	if len(order) != 2 || order[0] != 3 || order[1] != 1 {
		t.Errorf("disposers ran as %v, want [3 1]", order)
	}
	if !s.IsDisposed() {
		t.Error("expected IsDisposed() after unmount")
	}
}

func TestStateBase_NoNotifyAfterUnmount(t *testing.T) {
	s := &StateBase{}
	calls := 0
	s.AddObserver(func() { calls++ })
	s.OnUnmount()

	applied := false
	s.Update(func() { applied = true })

	if !applied {
		t.Error("Update should still apply the mutation")
	}
	if calls != 0 {
		t.Errorf("observer called %d times after unmount", calls)
	}
}

func TestStateBase_OnDisposeAfterUnmountRunsImmediately(t *testing.T) {
	s := &StateBase{}
	s.OnUnmount()
	ran := false
	s.OnDispose(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after unmount should run immediately")
	}
}
