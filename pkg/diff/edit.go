// Package diff compares two normalized trees and produces the ordered edit
// script that turns the first into the second.
//
// Children are matched by position only. Reordering a list shows up as
// changes at each affected index, never as a move.
package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/flywire/pkg/tree"
)

// Op is the kind of an edit.
type Op int

const (
	// Add inserts a subtree at Path.
	Add Op = iota
	// Remove deletes the subtree at Path.
	Remove
	// Change updates the node at Path, or replaces its subtree when
	// Edit.Replace is set.
	Change
)

func (o Op) String() string {
	switch o {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Change:
		return "change"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Path addresses a node by child indices from the root. The empty path is
// the root itself.
type Path []int

// Parent returns the path of the parent and the index within it. The root
// has no parent and reports ok=false.
func (p Path) Parent() (parent Path, index int, ok bool) {
	if len(p) == 0 {
		return nil, 0, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, index := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(index))
	}
	return b.String()
}

func (p Path) child(index int) Path {
	return append(p[:len(p):len(p)], index)
}

// Edit is one operation of a script.
type Edit struct {
	Op   Op
	Path Path
	// Old is the node being changed or removed.
	Old *tree.Node
	// New is the node being added, or the replacement for a Change.
	New *tree.Node
	// Replace marks a Change across a name or content-kind boundary. The
	// whole subtree is recreated.
	Replace bool
	// TextChanged marks a Change of leaf text.
	TextChanged bool
	// Props lists the added, removed or modified prop keys, sorted.
	Props []string
}

func (e Edit) String() string {
	var b strings.Builder
	b.WriteString(e.Op.String())
	b.WriteByte(' ')
	b.WriteString(e.Path.String())
	switch e.Op {
	case Add:
		fmt.Fprintf(&b, " %s", describe(e.New))
	case Remove:
		fmt.Fprintf(&b, " %s", describe(e.Old))
	case Change:
		if e.Replace {
			fmt.Fprintf(&b, " replace %s -> %s", describe(e.Old), describe(e.New))
			break
		}
		if e.TextChanged {
			fmt.Fprintf(&b, " text %q -> %q", e.Old.Text, e.New.Text)
		}
		if len(e.Props) > 0 {
			fmt.Fprintf(&b, " props [%s]", strings.Join(e.Props, " "))
		}
	}
	return b.String()
}

func describe(n *tree.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Content == tree.ContentText {
		return fmt.Sprintf("%s(%q)", n.Name, n.Text)
	}
	return n.Name
}

// Script is an ordered list of edits.
type Script []Edit

// Empty reports whether the script has no edits.
func (s Script) Empty() bool {
	return len(s) == 0
}

// Counts returns how many edits of each op the script holds.
func (s Script) Counts() (adds, removes, changes int) {
	for _, e := range s {
		switch e.Op {
		case Add:
			adds++
		case Remove:
			removes++
		case Change:
			changes++
		}
	}
	return adds, removes, changes
}

func (s Script) String() string {
	lines := make([]string, len(s))
	for i, e := range s {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
