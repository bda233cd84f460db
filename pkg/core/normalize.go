package core

import (
	"fmt"
	"time"

	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/tree"
)

// DefaultMaxDepth bounds descriptor nesting, counting component expansions.
const DefaultMaxDepth = 256

// Resolver answers whether a primitive name is registered.
type Resolver interface {
	Has(name string) bool
}

// Normalizer expands descriptors into primitive-only node trees.
type Normalizer struct {
	// Resolver decides which primitive names are valid.
	Resolver Resolver
	// Lifecycle mounts components as they are encountered. Nil disables
	// lifecycle hooks.
	Lifecycle *Lifecycle
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// Normalize expands d. Components are mounted on first sight and rendered;
// their output is normalized recursively. Unknown primitives fail with
// *errors.UnknownWidgetError, render panics with *errors.RenderError.
func (n *Normalizer) Normalize(d tree.Descriptor) (*tree.Node, error) {
	return n.normalize(d, nil, 0)
}

func (n *Normalizer) maxDepth() int {
	if n.MaxDepth > 0 {
		return n.MaxDepth
	}
	return DefaultMaxDepth
}

func (n *Normalizer) normalize(d tree.Descriptor, owners []tree.Component, depth int) (*tree.Node, error) {
	if depth >= n.maxDepth() {
		return nil, &errors.RenderError{
			Component: d.Kind.String(),
			Err:       fmt.Errorf("tree deeper than %d levels", n.maxDepth()),
			Timestamp: time.Now(),
		}
	}

	switch {
	case d.Kind.IsComponent():
		c := d.Kind.Component()
		if n.Lifecycle != nil {
			n.Lifecycle.Mount(c)
		}
		rendered, err := render(c, d.Content, d.Props)
		if err != nil {
			return nil, err
		}
		return n.normalize(rendered, append(owners[:len(owners):len(owners)], c), depth+1)

	case d.Kind.IsPrimitive():
		name := d.Kind.Name()
		if n.Resolver == nil || !n.Resolver.Has(name) {
			return nil, &errors.UnknownWidgetError{Name: name}
		}
		node := &tree.Node{
			Name:    name,
			Content: d.Content.Kind,
			Props:   d.Props.Clone(),
			Owners:  owners,
		}
		switch d.Content.Kind {
		case tree.ContentText:
			node.Text = d.Content.Text
		case tree.ContentChildren:
			node.Children = make([]*tree.Node, 0, len(d.Content.Items))
			for _, item := range d.Content.Items {
				child, err := n.normalize(item, nil, depth+1)
				if err != nil {
					return nil, err
				}
				node.Children = append(node.Children, child)
			}
		}
		return node, nil

	default:
		return nil, &errors.UnknownWidgetError{Name: d.Kind.String()}
	}
}

// render invokes c with the call shape matching d's content and converts a
// panic into a RenderError.
func render(c tree.Component, content tree.Content, props tree.Props) (result tree.Descriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.RenderError{
				Component:  fmt.Sprintf("%T", c),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
		}
	}()
	if content.IsZero() {
		return c.Render(props), nil
	}
	if cc, ok := c.(tree.ContentComponent); ok {
		return cc.RenderContent(content, props), nil
	}
	return c.Render(props.With("text", content.Value())), nil
}
