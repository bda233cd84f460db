package diff

import "testing"

func TestPath(t *testing.T) {
	p := Path{0, 2, 1}
	if p.String() != "/0/2/1" {
		t.Errorf("String() = %q", p.String())
	}
	if (Path{}).String() != "/" {
		t.Errorf("root String() = %q", Path{}.String())
	}

	parent, index, ok := p.Parent()
	if !ok || index != 1 || parent.String() != "/0/2" {
		t.Errorf("Parent() = %v, %d, %v", parent, index, ok)
	}
	if _, _, ok := (Path{}).Parent(); ok {
		t.Error("root should have no parent")
	}

	if !p.HasPrefix(Path{0, 2}) || !p.HasPrefix(Path{}) || p.HasPrefix(Path{1}) {
		t.Error("HasPrefix mismatch")
	}
	if (Path{0}).HasPrefix(Path{0, 1}) {
		t.Error("longer prefix should not match")
	}
}

func TestScriptString(t *testing.T) {
	s := Script{
		{Op: Add, Path: Path{2}, New: label("c")},
		{Op: Remove, Path: Path{1}, Old: label("b")},
		{Op: Change, Path: Path{0}, Old: label("a"), New: frame(), Replace: true},
		{Op: Change, Path: Path{}, Old: frame(), New: frame(), Props: []string{"color"}},
	}
	want := `add /2 Label("c")
remove /1 Label("b")
change /0 replace Label("a") -> Frame
change / props [color]`
	if s.String() != want {
		t.Errorf("String() =\n%s\nwant\n%s", s.String(), want)
	}
}

func TestOpString(t *testing.T) {
	if Op(9).String() != "Op(9)" {
		t.Errorf("unknown op = %q", Op(9).String())
	}
}
