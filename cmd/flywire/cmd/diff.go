package cmd

import (
	"flag"
	"fmt"

	"github.com/go-drift/flywire/pkg/core"
	"github.com/go-drift/flywire/pkg/diff"
	"github.com/go-drift/flywire/pkg/patch"
	"github.com/go-drift/flywire/pkg/surface"
	"github.com/go-drift/flywire/pkg/tree"
)

func init() {
	RegisterCommand(&Command{
		Name:  "diff",
		Short: "Print the edit script between two trees",
		Long: `Compare two serialized trees (YAML, or TOML by .toml extension) and
print the positional edit script that turns the first into the second.

Flags:
  -stat   Print only the number of adds, removes and changes
  -ops    Apply the script to an in-memory surface and print the widget
          operations it causes

Example tree:
  name: Frame
  children:
    - name: Label
      text: "Seconds Elapsed: 1"
    - name: Button
      text: "+"`,
		Usage: "flywire diff [-stat] [-ops] <old> <new>",
		Run:   runDiff,
	})
}

type diffOptions struct {
	oldPath, newPath string
	stat             bool
	ops              bool
}

func parseDiffArgs(args []string) (diffOptions, error) {
	opts := diffOptions{}
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.BoolVar(&opts.stat, "stat", false, "")
	fs.BoolVar(&opts.ops, "ops", false, "")
	positional, err := parseFlags(fs, args)
	if err != nil {
		return opts, err
	}
	if len(positional) != 2 {
		return opts, fmt.Errorf("two tree files are required\n\nUsage: flywire diff <old> <new>")
	}
	opts.oldPath, opts.newPath = positional[0], positional[1]
	return opts, nil
}

func runDiff(args []string) error {
	opts, err := parseDiffArgs(args)
	if err != nil {
		return err
	}

	mem := surface.NewMemory(0, 0)
	normalizer := &core.Normalizer{Resolver: mem.Registry()}
	oldNode, err := loadTree(normalizer, opts.oldPath)
	if err != nil {
		return err
	}
	newNode, err := loadTree(normalizer, opts.newPath)
	if err != nil {
		return err
	}

	script := diff.Diff(oldNode, newNode)
	switch {
	case opts.stat:
		adds, removes, changes := script.Counts()
		fmt.Fprintf(stdout, "%d adds, %d removes, %d changes\n", adds, removes, changes)
	case script.Empty():
		fmt.Fprintln(stdout, "no changes")
	default:
		fmt.Fprintln(stdout, script)
	}

	if !opts.ops {
		return nil
	}
	patcher := &patch.Patcher{Registry: mem.Registry(), Surface: mem}
	retained, err := patcher.Apply(diff.Initial(oldNode), nil)
	if err != nil {
		return err
	}
	defer func() { patch.Destroy(retained) }()
	mem.ResetOps()
	if retained, err = patcher.Apply(script, retained); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "# widget operations")
	for _, op := range mem.Ops() {
		fmt.Fprintln(stdout, op)
	}
	return nil
}

// loadTree decodes a record file and normalizes it against the registry.
func loadTree(n *core.Normalizer, path string) (*tree.Node, error) {
	record, err := tree.Decode(path)
	if err != nil {
		return nil, err
	}
	d, err := record.Descriptor()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	node, err := n.Normalize(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}
