// Package core provides the component model and the tree normalizer.
//
// Components are polymorphic over a small capability set. Every component
// implements tree.Component; stateful ones usually embed StateBase, which
// supplies observers, Update and disposal:
//
//	type timerApp struct {
//	    core.StateBase
//	    elapsed int
//	}
//
//	func (a *timerApp) OnMount(ctx *core.Context) error {
//	    core.UseInterval(a, ctx.Scheduler, time.Second, func() {
//	        a.Update(func() { a.elapsed++ })
//	    })
//	    return nil
//	}
//
//	func (a *timerApp) Render(tree.Props) tree.Descriptor {
//	    return tree.T("Label", fmt.Sprintf("Seconds Elapsed: %d", a.elapsed))
//	}
//
// # Lifecycle
//
// Lifecycle tracks which component instances are mounted. OnMount runs the
// first time an instance is seen during normalization, OnUnmount when the
// instance leaves the tree, each at most once. OnMount failures, returned
// or panicked, are reported to the error handler and never abort
// normalization.
//
// # Normalization
//
// Normalizer expands a Descriptor into a tree of primitive Nodes, rendering
// components until only registry-known widget names remain.
package core
