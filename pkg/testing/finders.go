package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/flywire/pkg/tree"
)

// Finder locates nodes in the retained tree.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root *tree.Node) []*tree.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*tree.Node
	finder Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *tree.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *tree.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *tree.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*tree.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

// Text returns the text of the first match. Panics if no matches.
func (r FinderResult) Text() string {
	return r.First().Text
}

// --- Finders ---

type nameFinder struct{ name string }

func (f *nameFinder) Evaluate(root *tree.Node) []*tree.Node {
	return collectMatches(root, func(n *tree.Node) bool { return n.Name == f.name })
}

func (f *nameFinder) Description() string {
	return fmt.Sprintf("ByName(%s)", f.name)
}

// ByName finds nodes whose primitive name is name.
func ByName(name string) Finder {
	return &nameFinder{name: name}
}

type textFinder struct{ text string }

func (f *textFinder) Evaluate(root *tree.Node) []*tree.Node {
	return collectMatches(root, func(n *tree.Node) bool {
		return n.Content == tree.ContentText && n.Text == f.text
	})
}

func (f *textFinder) Description() string {
	return fmt.Sprintf("ByText(%q)", f.text)
}

// ByText finds text nodes whose text equals text exactly.
func ByText(text string) Finder {
	return &textFinder{text: text}
}

type textContainingFinder struct{ substring string }

func (f *textContainingFinder) Evaluate(root *tree.Node) []*tree.Node {
	return collectMatches(root, func(n *tree.Node) bool {
		return n.Content == tree.ContentText && strings.Contains(n.Text, f.substring)
	})
}

func (f *textContainingFinder) Description() string {
	return fmt.Sprintf("ByTextContaining(%q)", f.substring)
}

// ByTextContaining finds text nodes whose text contains substring.
func ByTextContaining(substring string) Finder {
	return &textContainingFinder{substring: substring}
}

type propFinder struct {
	key   string
	value any
}

func (f *propFinder) Evaluate(root *tree.Node) []*tree.Node {
	return collectMatches(root, func(n *tree.Node) bool {
		v, ok := n.Props[f.key]
		return ok && tree.ValuesEqual(v, f.value)
	})
}

func (f *propFinder) Description() string {
	return fmt.Sprintf("ByProp(%s=%v)", f.key, f.value)
}

// ByProp finds nodes whose prop key equals value.
func ByProp(key string, value any) Finder {
	return &propFinder{key: key, value: value}
}

type predicateFinder struct {
	fn          func(*tree.Node) bool
	description string
}

func (f *predicateFinder) Evaluate(root *tree.Node) []*tree.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.description
}

// ByPredicate finds nodes for which fn returns true.
func ByPredicate(fn func(*tree.Node) bool) Finder {
	return &predicateFinder{fn: fn, description: "ByPredicate(custom)"}
}

type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *tree.Node) []*tree.Node {
	var out []*tree.Node
	seen := make(map[*tree.Node]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, child := range ancestor.Children {
			for _, n := range f.matching.Evaluate(child) {
				if !seen[n] {
					seen[n] = true
					out = append(out, n)
				}
			}
		}
	}
	return out
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant finds nodes matching matching that sit strictly below a node
// matching of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

func collectMatches(root *tree.Node, predicate func(*tree.Node) bool) []*tree.Node {
	var out []*tree.Node
	root.Walk(func(n *tree.Node, _ []int) bool {
		if predicate(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
