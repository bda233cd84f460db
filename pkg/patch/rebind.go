package patch

import (
	"maps"

	"github.com/go-drift/flywire/pkg/tree"
	"github.com/go-drift/flywire/pkg/widget"
)

// Rebind copies the func props of next onto the retained nodes at the same
// positions and hands them to the live widgets, so handlers always close
// over the latest render. retained must be the tree Apply returned for next.
// Handles implementing widget.Rebinder are rebound silently; other
// updatable widgets get their updater called with unchanged text. It
// returns the number of widgets rebound.
func Rebind(retained, next *tree.Node) int {
	if retained == nil || next == nil || retained.Name != next.Name {
		return 0
	}
	count := 0
	if funcs := tree.FuncProps(next.Props); funcs != nil {
		props := retained.Props.Clone()
		if props == nil {
			props = make(tree.Props, len(funcs))
		}
		maps.Copy(props, funcs)
		retained.Props = props
		if r, ok := retained.Backing.(widget.Rebinder); ok {
			r.Rebind(props)
			count++
		} else if retained.Update != nil {
			retained.Update(retained.Text, props)
			count++
		}
	}
	for i := 0; i < len(retained.Children) && i < len(next.Children); i++ {
		count += Rebind(retained.Children[i], next.Children[i])
	}
	return count
}
