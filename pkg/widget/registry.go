// Package widget defines the contract between the reconciler and a
// retained-mode widget surface: factories that materialize primitive nodes,
// a registry mapping primitive names to factories, and the surface
// lifecycle hooks.
package widget

import (
	"slices"
	"sync"

	"github.com/go-drift/flywire/pkg/tree"
)

// Factory materializes one primitive widget under parent at child position
// index. It returns the backing handle and an in-place updater; a nil
// updater marks a structural widget that is recreated on every change.
type Factory func(parent tree.Handle, index int, text string, props tree.Props) (tree.Handle, tree.UpdateFunc, error)

// Rebinder is implemented by handles that can swap their handler props
// without counting as an update. The engine rebinds the func props of every
// render this way; handles that do not implement it get their updater
// called with unchanged text instead.
type Rebinder interface {
	Rebind(props tree.Props)
}

// Surface is the host surface the widgets live on.
type Surface interface {
	// Root returns the handle new top-level widgets attach to.
	Root() tree.Handle
	// RequestRedraw asks the host to repaint after a patch.
	RequestRedraw()
	// OnResize registers a callback for surface size changes.
	OnResize(callback func(width, height int))
}

// Registry maps primitive names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	r.factories[name] = factory
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
