package engine_test

import (
	"fmt"

	"github.com/go-drift/flywire/pkg/core"
	"github.com/go-drift/flywire/pkg/engine"
	"github.com/go-drift/flywire/pkg/surface"
	"github.com/go-drift/flywire/pkg/tree"
)

type clicker struct {
	core.StateBase
	clicks int
}

func (c *clicker) Render(tree.Props) tree.Descriptor {
	return tree.T("Frame", []tree.Descriptor{
		tree.T("Label", fmt.Sprintf("Clicks: %d", c.clicks)),
		tree.T("Button", "click", tree.Props{"command": func() {
			c.Update(func() { c.clicks++ })
		}}),
	})
}

// This example mounts a stateful component on the in-memory surface and
// runs one loop iteration after a click.
func Example() {
	mem := surface.NewMemory(320, 240)
	e := engine.New(engine.Options{Registry: mem.Registry(), Surface: mem})
	if err := e.Mount(tree.T(&clicker{}, nil)); err != nil {
		fmt.Println(err)
		return
	}
	defer e.Unmount()

	mem.Click("click")
	e.Tick()

	fmt.Print(mem.Dump())
	// Output:
	// Frame
	//   Label "Clicks: 1"
	//   Button "click"
}
