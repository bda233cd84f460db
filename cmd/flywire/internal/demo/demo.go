// Package demo holds the sample applications run by "flywire run".
package demo

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-drift/flywire/pkg/core"
	"github.com/go-drift/flywire/pkg/tree"
)

// TimerApp counts the seconds since it was mounted.
type TimerApp struct {
	core.StateBase
	// Interval between ticks; zero means one second.
	Interval       time.Duration
	SecondsElapsed int
}

func (a *TimerApp) tick() {
	a.Update(func() { a.SecondsElapsed++ })
}

func (a *TimerApp) OnMount(ctx *core.Context) error {
	interval := a.Interval
	if interval <= 0 {
		interval = time.Second
	}
	core.UseInterval(a, ctx.Scheduler, interval, a.tick)
	if ctx.Logger != nil {
		ctx.Logger.Debug("timer started", "interval", interval)
	}
	return nil
}

func (a *TimerApp) Render(tree.Props) tree.Descriptor {
	return tree.T(TimerView, nil, tree.Props{"count": a.SecondsElapsed})
}

// TimerView renders the elapsed-seconds label for props["count"].
func TimerView(props tree.Props) tree.Descriptor {
	count, _ := props["count"].(int)
	return tree.T("Label", "Seconds Elapsed: "+strconv.Itoa(count))
}

// CounterApp shows a count with increment and decrement buttons.
type CounterApp struct {
	core.StateBase
	Count int
}

func (a *CounterApp) increment() { a.Update(func() { a.Count++ }) }
func (a *CounterApp) decrement() { a.Update(func() { a.Count-- }) }

func (a *CounterApp) Render(tree.Props) tree.Descriptor {
	return tree.T("Frame", []tree.Descriptor{
		tree.T("Label", strconv.Itoa(a.Count)),
		tree.T("Button", "+", tree.Props{"command": a.increment}),
		tree.T("Button", "-", tree.Props{"command": a.decrement}),
	})
}

// Apps maps demo names to constructors.
var Apps = map[string]func() tree.Descriptor{
	"timer":   func() tree.Descriptor { return tree.T(&TimerApp{}, nil) },
	"counter": func() tree.Descriptor { return tree.T(&CounterApp{}, nil) },
}

// Names returns the demo names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Apps))
	for name := range Apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the root descriptor of the named demo.
func New(name string) (tree.Descriptor, error) {
	ctor, ok := Apps[name]
	if !ok {
		return tree.Descriptor{}, fmt.Errorf("unknown app %q (use %v)", name, Names())
	}
	return ctor(), nil
}
