package diff

import (
	"slices"

	"github.com/go-drift/flywire/pkg/tree"
)

// Diff returns the edits that turn old into new. Both trees are only read.
//
// A nil old tree yields Initial(new); a nil new tree yields a single Remove
// of the root. Otherwise:
//   - a name or content-kind mismatch is one replacing Change,
//   - differing text or props is one Change for the node, emitted before
//     any edit of its children,
//   - children are compared position by position up to the shorter list,
//     extra new children are added in ascending order and extra old
//     children removed from the highest index down.
func Diff(old, new *tree.Node) Script {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		return Initial(new)
	case new == nil:
		return Script{{Op: Remove, Path: Path{}, Old: old}}
	}
	var script Script
	diffNode(&script, Path{}, old, new)
	return script
}

// Initial returns the script that materializes root from nothing: one Add
// per node in pre-order, each carrying the node without its children.
func Initial(root *tree.Node) Script {
	if root == nil {
		return nil
	}
	script := make(Script, 0, root.Count())
	root.Walk(func(n *tree.Node, path []int) bool {
		script = append(script, Edit{Op: Add, Path: slices.Clone(Path(path)), New: n.Shallow()})
		return true
	})
	return script
}

func diffNode(script *Script, path Path, old, new *tree.Node) {
	if old.Name != new.Name || old.Content != new.Content {
		*script = append(*script, Edit{Op: Change, Path: path, Old: old, New: new, Replace: true})
		return
	}

	textChanged := old.Content == tree.ContentText && old.Text != new.Text
	props := changedProps(old.Props, new.Props)
	if textChanged || len(props) > 0 {
		*script = append(*script, Edit{
			Op:          Change,
			Path:        path,
			Old:         old,
			New:         new,
			TextChanged: textChanged,
			Props:       props,
		})
	}

	if old.Content != tree.ContentChildren {
		return
	}
	shared := min(len(old.Children), len(new.Children))
	for i := 0; i < shared; i++ {
		diffNode(script, path.child(i), old.Children[i], new.Children[i])
	}
	for i := shared; i < len(new.Children); i++ {
		*script = append(*script, Edit{Op: Add, Path: path.child(i), New: new.Children[i]})
	}
	for i := len(old.Children) - 1; i >= shared; i-- {
		*script = append(*script, Edit{Op: Remove, Path: path.child(i), Old: old.Children[i]})
	}
}

func changedProps(old, new tree.Props) []string {
	var keys []string
	for key, ov := range old {
		nv, ok := new[key]
		if !ok || !tree.ValuesEqual(ov, nv) {
			keys = append(keys, key)
		}
	}
	for key := range new {
		if _, ok := old[key]; !ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}
