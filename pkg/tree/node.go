package tree

import (
	"reflect"
)

// Handle is an opaque reference to a materialized widget on a surface.
type Handle interface {
	// Destroy releases the widget. Each handle is destroyed exactly once.
	Destroy()
}

// UpdateFunc mutates a live widget in place with new text and props.
type UpdateFunc func(text string, props Props)

// Node is a normalized tree element. Name always refers to a registered
// primitive once normalization succeeded.
type Node struct {
	Name     string
	Content  ContentKind
	Text     string
	Children []*Node
	Props    Props

	// Backing is set once the node is materialized on a surface.
	Backing Handle
	// Update is the in-place updater returned by the widget factory; nil for
	// structural widgets.
	Update UpdateFunc
	// Owners are the component instances whose rendering produced this
	// node, outermost first.
	Owners []Component
}

// At resolves a positional path from n. It returns nil when the path does
// not exist.
func (n *Node) At(path []int) *Node {
	current := n
	for _, index := range path {
		if current == nil || current.Content != ContentChildren {
			return nil
		}
		if index < 0 || index >= len(current.Children) {
			return nil
		}
		current = current.Children[index]
	}
	return current
}

// Walk visits n and its descendants in pre-order. Returning false from
// visit skips the node's children.
func (n *Node) Walk(visit func(node *Node, path []int) bool) {
	if n == nil {
		return
	}
	n.walk(nil, visit)
}

func (n *Node) walk(path []int, visit func(*Node, []int) bool) {
	if !visit(n, path) {
		return
	}
	for i, child := range n.Children {
		child.walk(append(path[:len(path):len(path)], i), visit)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, []int) bool {
		count++
		return true
	})
	return count
}

// Clone deep-copies the semantic part of n. Backing, Update and Owners are
// not copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:    n.Name,
		Content: n.Content,
		Text:    n.Text,
		Props:   n.Props.Clone(),
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Shallow returns a copy of n without its children. A children node keeps
// its content kind with an empty list.
func (n *Node) Shallow() *Node {
	out := &Node{
		Name:    n.Name,
		Content: n.Content,
		Text:    n.Text,
		Props:   n.Props,
		Owners:  n.Owners,
	}
	if n.Content == ContentChildren {
		out.Children = []*Node{}
	}
	return out
}

// Equal reports whether a and b are structurally equal, ignoring Backing,
// Update and Owners.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Content != b.Content {
		return false
	}
	if a.Content == ContentText && a.Text != b.Text {
		return false
	}
	if !PropsEqual(a.Props, b.Props) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// PropsEqual reports whether two prop maps hold the same keys with equal
// values. A nil map equals an empty one.
func PropsEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !ValuesEqual(av, bv) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two prop values. Two funcs are equal when they
// have the same type and are both nil or both non-nil: Go cannot compare
// closures, so handlers are never diffed and the engine rebinds them on
// every cycle instead (see FuncProps).
func ValuesEqual(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.Func && bv.Kind() == reflect.Func {
		return av.Type() == bv.Type() && av.IsNil() == bv.IsNil()
	}
	return reflect.DeepEqual(a, b)
}

// IsFunc reports whether v is a non-nil func value.
func IsFunc(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// FuncProps returns the non-nil func values of p, or nil when there are
// none.
func FuncProps(p Props) Props {
	var funcs Props
	for key, value := range p {
		if IsFunc(value) {
			if funcs == nil {
				funcs = make(Props)
			}
			funcs[key] = value
		}
	}
	return funcs
}

// CopyOwners copies Owners from src onto dst for every position the two
// trees share.
func CopyOwners(dst, src *Node) {
	if dst == nil || src == nil {
		return
	}
	dst.Owners = src.Owners
	for i := 0; i < len(dst.Children) && i < len(src.Children); i++ {
		CopyOwners(dst.Children[i], src.Children[i])
	}
}
