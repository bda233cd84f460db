// Package surface provides reference widget surfaces: Memory, a headless
// recorder used by tests and the CLI, and Raster, which paints a widget
// tree into an image.
package surface

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/go-drift/flywire/pkg/tree"
	"github.com/go-drift/flywire/pkg/widget"
)

// OpKind classifies a recorded surface operation.
type OpKind string

const (
	OpCreate  OpKind = "create"
	OpUpdate  OpKind = "update"
	OpDestroy OpKind = "destroy"
)

// Op is one recorded widget operation.
type Op struct {
	Kind   OpKind
	ID     int
	Name   string
	Text   string
	Parent int
	Index  int
}

func (o Op) String() string {
	switch o.Kind {
	case OpCreate:
		return fmt.Sprintf("create #%d %s(%q) in #%d at %d", o.ID, o.Name, o.Text, o.Parent, o.Index)
	case OpUpdate:
		return fmt.Sprintf("update #%d %s(%q)", o.ID, o.Name, o.Text)
	default:
		return fmt.Sprintf("%s #%d %s", o.Kind, o.ID, o.Name)
	}
}

// Widget is a widget living on a Memory surface.
type Widget struct {
	ID       int
	Name     string
	Text     string
	Props    tree.Props
	Parent   *Widget
	Children []*Widget
	// Destroys counts Destroy calls; anything above one is a double free.
	Destroys int

	surface *Memory
}

// Destroy detaches w from its parent and records the operation.
func (w *Widget) Destroy() {
	m := w.surface
	m.mu.Lock()
	w.Destroys++
	if w.Parent != nil {
		for i, child := range w.Parent.Children {
			if child == w {
				w.Parent.Children = append(w.Parent.Children[:i], w.Parent.Children[i+1:]...)
				break
			}
		}
	}
	op := Op{Kind: OpDestroy, ID: w.ID, Name: w.Name}
	m.record(op)
	m.mu.Unlock()
}

// Rebind replaces w's props without recording an operation.
func (w *Widget) Rebind(props tree.Props) {
	w.surface.mu.Lock()
	w.Props = props
	w.surface.mu.Unlock()
}

// Memory is an in-memory widget surface that records every operation.
type Memory struct {
	// Out, when set, receives one line per recorded operation.
	Out io.Writer

	mu            sync.Mutex
	root          *Widget
	nextID        int
	ops           []Op
	redraws       int
	resize        []func(width, height int)
	width, height int
}

// NewMemory creates an empty surface of the given size.
func NewMemory(width, height int) *Memory {
	m := &Memory{width: width, height: height}
	m.root = &Widget{Name: "root", surface: m}
	return m
}

// Root returns the top-level container.
func (m *Memory) Root() tree.Handle {
	return m.root
}

// RootWidget returns the top-level container as a *Widget.
func (m *Memory) RootWidget() *Widget {
	return m.root
}

// RequestRedraw counts a redraw request.
func (m *Memory) RequestRedraw() {
	m.mu.Lock()
	m.redraws++
	m.mu.Unlock()
}

// Redraws returns how many redraws were requested.
func (m *Memory) Redraws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redraws
}

// OnResize registers a resize callback.
func (m *Memory) OnResize(callback func(width, height int)) {
	m.mu.Lock()
	m.resize = append(m.resize, callback)
	m.mu.Unlock()
}

// Resize changes the surface size and notifies resize callbacks.
func (m *Memory) Resize(width, height int) {
	m.mu.Lock()
	m.width, m.height = width, height
	callbacks := slices.Clone(m.resize)
	m.mu.Unlock()
	for _, cb := range callbacks {
		cb(width, height)
	}
}

// Size returns the surface size.
func (m *Memory) Size() (width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Ops returns a copy of the recorded operations.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// ResetOps clears the recorded operations.
func (m *Memory) ResetOps() {
	m.mu.Lock()
	m.ops = nil
	m.mu.Unlock()
}

func (m *Memory) record(op Op) {
	m.ops = append(m.ops, op)
	if m.Out != nil {
		fmt.Fprintln(m.Out, op)
	}
}

// Factory returns a widget factory for name. Structural widgets get no
// updater and are recreated on every change.
func (m *Memory) Factory(name string, structural bool) widget.Factory {
	return func(parent tree.Handle, index int, text string, props tree.Props) (tree.Handle, tree.UpdateFunc, error) {
		p := m.root
		if parent != nil {
			w, ok := parent.(*Widget)
			if !ok || w.surface != m {
				return nil, nil, fmt.Errorf("parent %T does not belong to this surface", parent)
			}
			p = w
		}

		m.mu.Lock()
		m.nextID++
		w := &Widget{ID: m.nextID, Name: name, Text: text, Props: props, Parent: p, surface: m}
		index = max(0, min(index, len(p.Children)))
		p.Children = append(p.Children, nil)
		copy(p.Children[index+1:], p.Children[index:])
		p.Children[index] = w
		m.record(Op{Kind: OpCreate, ID: w.ID, Name: name, Text: text, Parent: p.ID, Index: index})
		m.mu.Unlock()

		if structural {
			return w, nil, nil
		}
		update := func(text string, props tree.Props) {
			m.mu.Lock()
			w.Text = text
			w.Props = props
			m.record(Op{Kind: OpUpdate, ID: w.ID, Name: w.Name, Text: text})
			m.mu.Unlock()
		}
		return w, update, nil
	}
}

// Registry returns a registry with Label, Button and Frame bound to this
// surface. Frame is structural.
func (m *Memory) Registry() *widget.Registry {
	r := widget.NewRegistry()
	r.Register("Label", m.Factory("Label", false))
	r.Register("Button", m.Factory("Button", false))
	r.Register("Frame", m.Factory("Frame", true))
	return r
}

// Find returns the first live widget, in pre-order, with the given name and
// text. An empty text matches any.
func (m *Memory) Find(name, text string) *Widget {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *Widget
	var walk func(w *Widget) bool
	walk = func(w *Widget) bool {
		if w.Name == name && (text == "" || w.Text == text) {
			found = w
			return true
		}
		for _, child := range w.Children {
			if walk(child) {
				return true
			}
		}
		return false
	}
	for _, child := range m.root.Children {
		if walk(child) {
			break
		}
	}
	return found
}

// Click invokes the "command" prop of the first Button showing text. It
// reports whether a command ran.
func (m *Memory) Click(text string) bool {
	w := m.Find("Button", text)
	if w == nil {
		return false
	}
	m.mu.Lock()
	command, ok := w.Props["command"].(func())
	m.mu.Unlock()
	if !ok {
		return false
	}
	command()
	return true
}

// Count returns the number of live widgets.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count func(w *Widget) int
	count = func(w *Widget) int {
		n := len(w.Children)
		for _, child := range w.Children {
			n += count(child)
		}
		return n
	}
	return count(m.root)
}

// Dump renders the live widget tree, one widget per line.
func (m *Memory) Dump() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b strings.Builder
	var walk func(w *Widget, depth int)
	walk = func(w *Widget, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if w.Text != "" {
			fmt.Fprintf(&b, "%s %q\n", w.Name, w.Text)
		} else {
			fmt.Fprintf(&b, "%s\n", w.Name)
		}
		for _, child := range w.Children {
			walk(child, depth+1)
		}
	}
	for _, child := range m.root.Children {
		walk(child, 0)
	}
	return b.String()
}
