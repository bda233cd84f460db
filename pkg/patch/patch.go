// Package patch applies diff scripts to a retained node tree and the widget
// surface behind it.
package patch

import (
	"fmt"
	"slices"

	"github.com/go-drift/flywire/pkg/diff"
	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/tree"
	"github.com/go-drift/flywire/pkg/widget"
)

// Unmounter is told about every component owning a released subtree.
type Unmounter interface {
	Unmount(c tree.Component) bool
}

// Patcher applies edit scripts. The retained tree it returns is its own:
// nodes are materialized copies of the script payloads carrying backing
// handles and updaters.
type Patcher struct {
	Registry *widget.Registry
	// Surface provides the root handle. Nil attaches top-level widgets to a
	// nil parent.
	Surface widget.Surface
	// Lifecycle receives the owners of removed or replaced subtrees. May be
	// nil.
	Lifecycle Unmounter
}

// Apply applies script to the retained tree old and returns the new retained
// root. Edits are applied in script order; once a subtree is replaced, later
// edits inside it are skipped.
//
// On error the partially patched root is returned alongside it so the caller
// keeps a tree that matches the surface.
func (p *Patcher) Apply(script diff.Script, old *tree.Node) (*tree.Node, error) {
	root := old
	var replaced []diff.Path
	for _, e := range script {
		if underReplaced(e.Path, replaced) {
			continue
		}
		var err error
		switch e.Op {
		case diff.Add:
			root, err = p.add(root, e)
		case diff.Remove:
			root, err = p.remove(root, e)
		case diff.Change:
			var replacedNow bool
			root, replacedNow, err = p.change(root, e)
			if replacedNow {
				replaced = append(replaced, e.Path)
			}
		default:
			err = stale(e, fmt.Sprintf("unknown op %v", e.Op))
		}
		if err != nil {
			return root, err
		}
	}
	return root, nil
}

func underReplaced(path diff.Path, replaced []diff.Path) bool {
	for _, prefix := range replaced {
		if len(path) > len(prefix) && path.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

func stale(e diff.Edit, reason string) error {
	return &errors.StaleUpdateError{Op: e.Op.String(), Path: slices.Clone([]int(e.Path)), Reason: reason}
}

func (p *Patcher) add(root *tree.Node, e diff.Edit) (*tree.Node, error) {
	if e.New == nil {
		return root, stale(e, "no payload")
	}
	parentPath, index, ok := e.Path.Parent()
	if !ok {
		if root != nil {
			return root, stale(e, "root already materialized")
		}
		return p.materialize(p.rootHandle(), 0, e.New)
	}
	parent := root.At(parentPath)
	if parent == nil || parent.Content != tree.ContentChildren {
		return root, stale(e, "parent does not hold children")
	}
	if index < 0 || index > len(parent.Children) {
		return root, stale(e, fmt.Sprintf("index %d outside %d children", index, len(parent.Children)))
	}
	node, err := p.materialize(parent.Backing, index, e.New)
	if err != nil {
		return root, err
	}
	parent.Children = slices.Insert(parent.Children, index, node)
	return root, nil
}

func (p *Patcher) remove(root *tree.Node, e diff.Edit) (*tree.Node, error) {
	parentPath, index, ok := e.Path.Parent()
	if !ok {
		if root == nil {
			return nil, stale(e, "no root")
		}
		p.release(root)
		return nil, nil
	}
	parent := root.At(parentPath)
	if parent == nil || index < 0 || index >= len(parent.Children) {
		return root, stale(e, "no node at path")
	}
	p.release(parent.Children[index])
	parent.Children = slices.Delete(parent.Children, index, index+1)
	return root, nil
}

// change updates the target in place when it has an updater, and replaces
// its subtree otherwise. It reports whether the subtree was replaced.
func (p *Patcher) change(root *tree.Node, e diff.Edit) (*tree.Node, bool, error) {
	if e.New == nil {
		return root, false, stale(e, "no payload")
	}
	target := root.At(e.Path)
	if target == nil {
		return root, false, stale(e, "no node at path")
	}
	if e.Old != nil && target.Name != e.Old.Name {
		return root, false, stale(e, fmt.Sprintf("found %s, expected %s", target.Name, e.Old.Name))
	}

	if !e.Replace && target.Update != nil && target.Content == e.New.Content {
		props := e.New.Props.Clone()
		target.Update(e.New.Text, props)
		target.Text = e.New.Text
		target.Props = props
		target.Owners = e.New.Owners
		return root, false, nil
	}

	parentPath, index, ok := e.Path.Parent()
	if !ok {
		p.release(root)
		node, err := p.materialize(p.rootHandle(), 0, e.New)
		return node, true, err
	}
	parent := root.At(parentPath)
	p.release(target)
	node, err := p.materialize(parent.Backing, index, e.New)
	if err != nil {
		parent.Children = slices.Delete(parent.Children, index, index+1)
		return root, true, err
	}
	parent.Children[index] = node
	return root, true, nil
}

func (p *Patcher) rootHandle() tree.Handle {
	if p.Surface == nil {
		return nil
	}
	return p.Surface.Root()
}

// materialize creates the widgets for src and its descendants.
func (p *Patcher) materialize(parent tree.Handle, index int, src *tree.Node) (*tree.Node, error) {
	if p.Registry == nil {
		return nil, &errors.UnknownWidgetError{Name: src.Name}
	}
	factory, ok := p.Registry.Lookup(src.Name)
	if !ok {
		return nil, &errors.UnknownWidgetError{Name: src.Name}
	}
	props := src.Props.Clone()
	handle, update, err := factory(parent, index, src.Text, props)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", src.Name, err)
	}
	node := &tree.Node{
		Name:    src.Name,
		Content: src.Content,
		Text:    src.Text,
		Props:   props,
		Backing: handle,
		Update:  update,
		Owners:  src.Owners,
	}
	if src.Content == tree.ContentChildren {
		node.Children = make([]*tree.Node, 0, len(src.Children))
		for i, child := range src.Children {
			c, err := p.materialize(handle, i, child)
			if err != nil {
				destroy(node)
				return nil, err
			}
			node.Children = append(node.Children, c)
		}
	}
	return node, nil
}

// release unmounts the owners of n's subtree, outermost first, then
// destroys its widgets.
func (p *Patcher) release(n *tree.Node) {
	if p.Lifecycle != nil {
		n.Walk(func(node *tree.Node, _ []int) bool {
			for _, owner := range node.Owners {
				p.Lifecycle.Unmount(owner)
			}
			return true
		})
	}
	destroy(n)
}

// Destroy releases every backing handle of n's subtree, children first.
// Handles are cleared so a second call is a no-op.
func Destroy(n *tree.Node) {
	if n != nil {
		destroy(n)
	}
}

func destroy(n *tree.Node) {
	for i := len(n.Children) - 1; i >= 0; i-- {
		destroy(n.Children[i])
	}
	if n.Backing != nil {
		n.Backing.Destroy()
		n.Backing = nil
	}
	n.Update = nil
}
