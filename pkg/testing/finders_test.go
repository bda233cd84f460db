package testing

import (
	"strings"
	"testing"

	"github.com/go-drift/flywire/pkg/testing/internal/testbed"
	"github.com/go-drift/flywire/pkg/tree"
)

func mountForm(t *testing.T) *Tester {
	t.Helper()
	tester := NewTesterWithT(t)
	err := tester.Mount(tree.T("Frame", []tree.Descriptor{
		tree.T("Label", "Name", tree.Props{"color": "#333"}),
		tree.T("Frame", []tree.Descriptor{
			tree.T("Button", "Save"),
			tree.T("Button", "Cancel", tree.Props{"color": "red"}),
		}),
		tree.T("Label", "Saved 3 items"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	return tester
}

func TestByName(t *testing.T) {
	tester := mountForm(t)

	if got := tester.Find(ByName("Button")).Count(); got != 2 {
		t.Errorf("found %d buttons, want 2", got)
	}
	if got := tester.Find(ByName("Frame")).Count(); got != 2 {
		t.Errorf("found %d frames, want 2", got)
	}
	if tester.Find(ByName("Slider")).Exists() {
		t.Error("should not find Slider")
	}
}

func TestByText(t *testing.T) {
	tester := mountForm(t)

	if !tester.Find(ByText("Save")).Exists() {
		t.Error("expected to find text 'Save'")
	}
	if tester.Find(ByText("Sav")).Exists() {
		t.Error("ByText must match exactly")
	}
}

func TestByTextContaining(t *testing.T) {
	tester := mountForm(t)

	result := tester.Find(ByTextContaining("Sav"))
	if result.Count() != 2 {
		t.Fatalf("found %d, want 2", result.Count())
	}
	if result.At(0).Text != "Save" || result.At(1).Text != "Saved 3 items" {
		t.Errorf("matches out of pre-order: %q, %q", result.At(0).Text, result.At(1).Text)
	}
}

func TestByProp(t *testing.T) {
	tester := mountForm(t)

	if got := tester.Find(ByProp("color", "red")).Text(); got != "Cancel" {
		t.Errorf("ByProp found %q, want Cancel", got)
	}
}

func TestByPredicate(t *testing.T) {
	tester := mountForm(t)

	result := tester.Find(ByPredicate(func(n *tree.Node) bool {
		return len(n.Children) == 2
	}))
	if result.Count() != 1 || result.First().Name != "Frame" {
		t.Errorf("unexpected matches %v", result.All())
	}
}

func TestDescendant(t *testing.T) {
	tester := mountForm(t)

	inner := ByPredicate(func(n *tree.Node) bool {
		return n.Name == "Frame" && len(n.Children) == 2
	})
	if got := tester.Find(Descendant(inner, ByName("Button"))).Count(); got != 2 {
		t.Errorf("found %d buttons under the inner frame, want 2", got)
	}
	if tester.Find(Descendant(inner, ByName("Label"))).Exists() {
		t.Error("labels are not under the inner frame")
	}
	if got := tester.Find(Descendant(ByName("Frame"), ByName("Button"))).Count(); got != 2 {
		t.Errorf("nested frames must not duplicate matches, got %d", got)
	}
}

func TestFinderResult_FirstPanicsWithDescription(t *testing.T) {
	tester := NewTesterWithT(t)
	if err := tester.Mount(tree.T(&testbed.Counter{}, nil)); err != nil {
		t.Fatal(err)
	}

	defer func() {
		r := recover()
		msg, _ := r.(string)
		if !strings.Contains(msg, `ByText("Count: 9")`) {
			t.Errorf("panic = %v", r)
		}
	}()
	tester.Find(ByText("Count: 9")).First()
}

func TestFinderResult_FirstOrNil(t *testing.T) {
	tester := NewTesterWithT(t)

	if tester.Find(ByName("Label")).FirstOrNil() != nil {
		t.Error("expected nil before Mount")
	}
}
