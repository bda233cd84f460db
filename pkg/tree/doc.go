// Package tree defines the values the reconciler moves between: author-facing
// Descriptors, normalized Nodes, and their serialized Record form.
//
// # Descriptors
//
// A Descriptor is what a component's Render returns. It names either a
// primitive widget (a key into the widget registry) or another component,
// plus content and props:
//
//	tree.T("Frame", []tree.Descriptor{
//	    tree.T("Label", "+"),
//	    tree.T("Label", "-"),
//	}, tree.Props{"align": "center"})
//
// Building is pure and never validates. An unknown primitive name or an
// unsupported kind value is reported later, during normalization.
//
// # Nodes
//
// A Node is a normalized element: its Name always refers to a registered
// primitive, and its content is text, an ordered list of child Nodes, or
// nothing. Backing, Update and Owners are render-surface and lifecycle
// artifacts; Equal and the differ ignore them.
//
// # Records
//
// Record is the serialized shape of a static tree, read from YAML or TOML
// files and written by snapshots and the debug server:
//
//	name: Frame
//	props: {align: center}
//	children:
//	  - name: Label
//	    text: "+"
package tree
