package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type counterView struct{}

func (counterView) Render(props Props) Descriptor {
	return T("Label", props["count"])
}

func TestT_ResolvesKinds(t *testing.T) {
	tests := []struct {
		name      string
		kind      any
		primitive bool
		component bool
	}{
		{"string", "Label", true, false},
		{"kind", Primitive("Frame"), true, false},
		{"component", counterView{}, false, true},
		{"func", func(Props) Descriptor { return Descriptor{} }, false, true},
		{"int", 42, false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := T(tt.kind, nil)
			if got := d.Kind.IsPrimitive(); got != tt.primitive {
				t.Errorf("IsPrimitive() = %v, want %v", got, tt.primitive)
			}
			if got := d.Kind.IsComponent(); got != tt.component {
				t.Errorf("IsComponent() = %v, want %v", got, tt.component)
			}
			if got := d.Kind.Valid(); got != (tt.primitive || tt.component) {
				t.Errorf("Valid() = %v", got)
			}
		})
	}
}

func TestT_InvalidKindKeepsValueForReporting(t *testing.T) {
	d := T(3.5, "x")
	if d.Kind.String() != "3.5" {
		t.Errorf("Kind.String() = %q, want %q", d.Kind.String(), "3.5")
	}
}

func TestContentOf(t *testing.T) {
	child := T("Label", "a")
	tests := []struct {
		name  string
		in    any
		kind  ContentKind
		text  string
		items int
	}{
		{"nil", nil, ContentNone, "", 0},
		{"string", "hello", ContentText, "hello", 0},
		{"empty string", "", ContentText, "", 0},
		{"single descriptor", child, ContentChildren, "", 1},
		{"list", []Descriptor{child, child}, ContentChildren, "", 2},
		{"empty list", []Descriptor{}, ContentChildren, "", 0},
		{"number", 7, ContentText, "7", 0},
		{"content", Text("x"), ContentText, "x", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ContentOf(tt.in)
			if c.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", c.Kind, tt.kind)
			}
			if c.Text != tt.text {
				t.Errorf("Text = %q, want %q", c.Text, tt.text)
			}
			if len(c.Items) != tt.items {
				t.Errorf("len(Items) = %d, want %d", len(c.Items), tt.items)
			}
		})
	}
}

func TestT_MergesProps(t *testing.T) {
	d := T("Label", "x", Props{"a": 1, "b": 2}, Props{"b": 3})
	want := Props{"a": 1, "b": 3}
	if diff := cmp.Diff(want, d.Props); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestProps_WithDoesNotMutate(t *testing.T) {
	p := Props{"a": 1}
	q := p.With("text", "x")
	if _, ok := p["text"]; ok {
		t.Error("With mutated the receiver")
	}
	if q["text"] != "x" || q["a"] != 1 {
		t.Errorf("With() = %v", q)
	}
}
