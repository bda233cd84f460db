package tree

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Record is the serialized form of a primitive-only tree. Text and Children
// are mutually exclusive; neither means the element has no content.
type Record struct {
	Name     string    `yaml:"name" json:"name" toml:"name"`
	Text     *string   `yaml:"text,omitempty" json:"text,omitempty" toml:"text,omitempty"`
	Props    Props     `yaml:"props,omitempty" json:"props,omitempty" toml:"props,omitempty"`
	Children []*Record `yaml:"children,omitempty" json:"children,omitempty" toml:"children,omitempty"`
}

// FuncPlaceholder stands in for func-valued props in a Record.
const FuncPlaceholder = "<func>"

// RecordOf captures the semantic content of a normalized tree. Func props
// are recorded as FuncPlaceholder.
func RecordOf(n *Node) *Record {
	if n == nil {
		return nil
	}
	r := &Record{Name: n.Name}
	if len(n.Props) > 0 {
		r.Props = make(Props, len(n.Props))
		for key, value := range n.Props {
			if value != nil && reflect.TypeOf(value).Kind() == reflect.Func {
				value = FuncPlaceholder
			}
			r.Props[key] = value
		}
	}
	switch n.Content {
	case ContentText:
		text := n.Text
		r.Text = &text
	case ContentChildren:
		r.Children = make([]*Record, len(n.Children))
		for i, child := range n.Children {
			r.Children[i] = RecordOf(child)
		}
	}
	return r
}

// Descriptor converts the record back into a Descriptor of primitives.
func (r *Record) Descriptor() (Descriptor, error) {
	if r == nil {
		return Descriptor{}, fmt.Errorf("tree: nil record")
	}
	if strings.TrimSpace(r.Name) == "" {
		return Descriptor{}, fmt.Errorf("tree: record without a name")
	}
	if r.Text != nil && len(r.Children) > 0 {
		return Descriptor{}, fmt.Errorf("tree: %s has both text and children", r.Name)
	}
	d := Descriptor{Kind: Primitive(r.Name), Props: r.Props}
	switch {
	case r.Text != nil:
		d.Content = Text(*r.Text)
	case r.Children != nil:
		items := make([]Descriptor, len(r.Children))
		for i, child := range r.Children {
			item, err := child.Descriptor()
			if err != nil {
				return Descriptor{}, fmt.Errorf("%s[%d]: %w", r.Name, i, err)
			}
			items[i] = item
		}
		d.Content = Children(items...)
	}
	return d, nil
}

// EncodeYAML writes r as YAML.
func (r *Record) EncodeYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses a YAML record.
func DecodeYAML(data []byte) (*Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	return &r, nil
}

// DecodeTOML parses a TOML record.
func DecodeTOML(data []byte) (*Record, error) {
	var r Record
	if _, err := toml.Decode(string(data), &r); err != nil {
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	r.normalizeNumbers()
	return &r, nil
}

// normalizeNumbers turns the int64 integers TOML decodes into int, the type
// YAML yields, so the same tree compares equal in either format.
func (r *Record) normalizeNumbers() {
	if r == nil {
		return
	}
	for key, value := range r.Props {
		r.Props[key] = normalizeNumber(value)
	}
	for _, child := range r.Children {
		child.normalizeNumbers()
	}
}

func normalizeNumber(v any) any {
	switch v := v.(type) {
	case int64:
		if int64(int(v)) == v {
			return int(v)
		}
	case map[string]any:
		for key, value := range v {
			v[key] = normalizeNumber(value)
		}
	case []map[string]any:
		for _, m := range v {
			normalizeNumber(m)
		}
	case []any:
		for i, value := range v {
			v[i] = normalizeNumber(value)
		}
	}
	return v
}

// Decode reads a record file, choosing the format by extension
// (.toml for TOML, anything else is read as YAML).
func Decode(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return DecodeTOML(data)
	}
	return DecodeYAML(data)
}
