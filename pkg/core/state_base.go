package core

import "sync"

// stateBase is satisfied by any struct that embeds StateBase.
// Hooks and NewManaged accept stateBase so callers can pass s directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

type observer struct {
	id uint64
	fn func()
}

// StateBase provides observers, state updates and disposal for stateful
// components. Embed it in a component struct and use the component by
// pointer.
//
// Example:
//
//	type counter struct {
//	    core.StateBase
//	    count int
//	}
//
//	func (c *counter) increment() {
//	    c.Update(func() { c.count++ })
//	}
type StateBase struct {
	mu        sync.Mutex
	observers []observer
	nextID    uint64
	disposers []func()
	disposed  bool
}

// AddObserver registers fn to be called after every Update. The returned
// function removes it.
func (s *StateBase) AddObserver(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// ObserverCount returns the number of registered observers.
func (s *StateBase) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Update applies fn and then notifies every observer before returning.
// After disposal the mutation is still applied but nobody is notified.
//
// Update is NOT thread-safe with respect to rendering. It must only be
// called from the engine loop; other goroutines use engine.Dispatch.
func (s *StateBase) Update(fn func()) {
	if fn != nil {
		fn()
	}
	s.Notify()
}

// Notify calls every observer without changing state.
func (s *StateBase) Notify() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	observers := make([]func(), len(s.observers))
	for i, o := range s.observers {
		observers[i] = o.fn
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// OnDispose registers a cleanup function to be called when the component
// unmounts. Returns an unregister function that can be called to remove the
// disposer. The cleanup function will only be called once.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		// Already disposed, run cleanup immediately
		cleanup()
		return func() {}
	}

	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers executes all registered disposers in reverse order and drops
// every observer.
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	disposers := s.disposers
	s.disposers = nil
	s.observers = nil
	s.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// OnUnmount runs the disposers. Components overriding it must call
// s.StateBase.OnUnmount().
func (s *StateBase) OnUnmount() {
	s.RunDisposers()
}

// IsDisposed returns true once the component has been unmounted.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
