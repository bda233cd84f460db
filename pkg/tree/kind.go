package tree

import "fmt"

// Component renders itself into a Descriptor. Stateful components are
// usually pointers embedding core.StateBase; stateless ones can use Func.
type Component interface {
	Render(props Props) Descriptor
}

// ContentComponent is implemented by components that accept content
// (text or children) through a dedicated call. Components without it still
// receive content, injected as the "text" prop.
type ContentComponent interface {
	Component
	RenderContent(content Content, props Props) Descriptor
}

// Func adapts a plain render function into a stateless Component.
type Func func(props Props) Descriptor

// Render calls f.
func (f Func) Render(props Props) Descriptor {
	return f(props)
}

type kindTag uint8

const (
	kindInvalid kindTag = iota
	kindPrimitive
	kindComponent
)

// Kind identifies what a Descriptor expands to: a primitive widget name or
// a component. The zero Kind is invalid.
type Kind struct {
	tag  kindTag
	name string
	comp Component
	raw  any
}

// Primitive returns the kind for a registry-known widget name.
func Primitive(name string) Kind {
	return Kind{tag: kindPrimitive, name: name}
}

// Comp returns the kind for a component. A nil component yields an invalid kind.
func Comp(c Component) Kind {
	if c == nil {
		return Kind{}
	}
	return Kind{tag: kindComponent, comp: c}
}

// KindOf resolves an arbitrary value into a Kind. Strings become primitives,
// components and render functions become component kinds. Anything else is
// kept as an invalid kind that fails at normalization.
func KindOf(v any) Kind {
	switch typed := v.(type) {
	case Kind:
		return typed
	case string:
		return Primitive(typed)
	case Component:
		return Comp(typed)
	case func(Props) Descriptor:
		return Comp(Func(typed))
	default:
		return Kind{raw: v}
	}
}

// IsPrimitive reports whether k names a primitive widget.
func (k Kind) IsPrimitive() bool { return k.tag == kindPrimitive }

// IsComponent reports whether k refers to a component.
func (k Kind) IsComponent() bool { return k.tag == kindComponent }

// Valid reports whether k is either a primitive or a component.
func (k Kind) Valid() bool { return k.tag != kindInvalid }

// Name returns the primitive name, or "" for other kinds.
func (k Kind) Name() string { return k.name }

// Component returns the component, or nil for other kinds.
func (k Kind) Component() Component { return k.comp }

func (k Kind) String() string {
	switch k.tag {
	case kindPrimitive:
		return k.name
	case kindComponent:
		return fmt.Sprintf("%T", k.comp)
	default:
		return fmt.Sprintf("%v", k.raw)
	}
}
