// Package testbed provides internal test components for the testing framework.
package testbed

import (
	"fmt"
	"time"

	"github.com/go-drift/flywire/pkg/core"
	"github.com/go-drift/flywire/pkg/host"
	"github.com/go-drift/flywire/pkg/tree"
)

// Counter displays a count and increments it when its button is clicked.
type Counter struct {
	core.StateBase
	Count int
	OnTap func(count int)
}

func (c *Counter) increment() {
	c.Update(func() { c.Count++ })
	if c.OnTap != nil {
		c.OnTap(c.Count)
	}
}

func (c *Counter) Render(tree.Props) tree.Descriptor {
	return tree.T("Frame", []tree.Descriptor{
		tree.T("Label", fmt.Sprintf("Count: %d", c.Count)),
		tree.T("Button", "+", tree.Props{"command": c.increment}),
	})
}

// Ticker counts elapsed intervals with a host timer started on mount.
// A positive Limit stops the timer after that many ticks.
type Ticker struct {
	core.StateBase
	Interval time.Duration
	Limit    int
	Ticks    int
}

func (t *Ticker) OnMount(ctx *core.Context) error {
	interval := t.Interval
	if interval <= 0 {
		interval = time.Second
	}
	var handle host.CancelHandle
	handle = core.UseInterval(t, ctx.Scheduler, interval, func() {
		t.Update(func() { t.Ticks++ })
		if t.Limit > 0 && t.Ticks >= t.Limit {
			ctx.Scheduler.Cancel(handle)
		}
	})
	return nil
}

func (t *Ticker) Render(tree.Props) tree.Descriptor {
	return tree.T("Label", fmt.Sprintf("Ticks: %d", t.Ticks))
}
