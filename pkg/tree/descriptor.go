package tree

import (
	"fmt"
	"maps"
)

// Props is the property bag carried by descriptors and nodes.
type Props map[string]any

// Clone returns a shallow copy of p. A nil map stays nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// With returns a copy of p with key set to value.
func (p Props) With(key string, value any) Props {
	out := make(Props, len(p)+1)
	maps.Copy(out, p)
	out[key] = value
	return out
}

// ContentKind tells which of the three content shapes an element carries.
type ContentKind uint8

const (
	// ContentNone means the element has neither text nor children.
	ContentNone ContentKind = iota
	// ContentText means the element carries a text leaf.
	ContentText
	// ContentChildren means the element carries an ordered child list.
	ContentChildren
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentChildren:
		return "children"
	default:
		return "none"
	}
}

// Content is the unnormalized content of a Descriptor.
type Content struct {
	Kind  ContentKind
	Text  string
	Items []Descriptor
}

// Text returns text content.
func Text(s string) Content {
	return Content{Kind: ContentText, Text: s}
}

// Children returns child-list content.
func Children(items ...Descriptor) Content {
	return Content{Kind: ContentChildren, Items: items}
}

// IsZero reports whether c carries nothing.
func (c Content) IsZero() bool { return c.Kind == ContentNone }

// Value returns the content as a plain Go value: nil, a string, or a
// []Descriptor.
func (c Content) Value() any {
	switch c.Kind {
	case ContentText:
		return c.Text
	case ContentChildren:
		return c.Items
	default:
		return nil
	}
}

// ContentOf converts a builder argument into Content.
func ContentOf(v any) Content {
	switch typed := v.(type) {
	case nil:
		return Content{}
	case Content:
		return typed
	case string:
		return Text(typed)
	case Descriptor:
		return Children(typed)
	case []Descriptor:
		return Children(typed...)
	default:
		return Text(fmt.Sprint(typed))
	}
}

// Descriptor is the author-facing, unnormalized description of one element.
type Descriptor struct {
	Kind    Kind
	Content Content
	Props   Props
}

// T builds a Descriptor. kind is resolved with KindOf, content with
// ContentOf, and props maps are merged left to right. T never fails.
func T(kind any, content any, props ...Props) Descriptor {
	d := Descriptor{
		Kind:    KindOf(kind),
		Content: ContentOf(content),
	}
	switch len(props) {
	case 0:
	case 1:
		d.Props = props[0]
	default:
		merged := Props{}
		for _, p := range props {
			maps.Copy(merged, p)
		}
		d.Props = merged
	}
	return d
}
