package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/module"

	"github.com/go-drift/flywire/cmd/flywire/internal/config"
	"github.com/go-drift/flywire/cmd/flywire/internal/templates"
	"github.com/go-drift/flywire/pkg/engine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Create a new flywire project",
		Long: `Create a new flywire project in a new directory.

This command creates:
  - go.mod with the specified module path
  - flywire.yaml with the default engine and log settings
  - main.go with a starter timer application
  - tree.yaml, a sample tree for "flywire render" and "flywire diff"

The project name is derived from the directory basename.
The module path defaults to the project name if not specified.

Examples:
  flywire init clock
  flywire init clock github.com/username/clock
  flywire init ./projects/clock`,
		Usage: "flywire init <directory> [module-path]",
		Run:   runInit,
	})
}

// runInit creates a new project. The first argument is the directory to
// create; an optional second argument overrides the module path.
func runInit(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("directory is required\n\nUsage: flywire init <directory> [module-path]")
	}

	raw := args[0]
	if strings.HasPrefix(raw, "~") {
		return fmt.Errorf("tilde (~) is not expanded by flywire; use an absolute path or $HOME instead")
	}

	dir := filepath.Clean(raw)
	if err := validateDirectory(dir); err != nil {
		return err
	}

	projectName := filepath.Base(dir)
	modulePath := projectName
	if len(args) > 1 {
		modulePath = args[1]
	}
	if modulePath == "" {
		return fmt.Errorf("module path cannot be empty")
	}
	if err := validateProjectName(projectName); err != nil {
		return fmt.Errorf("invalid project name %q (derived from directory basename): %w", projectName, err)
	}
	if err := module.CheckImportPath(modulePath); err != nil {
		return fmt.Errorf("invalid module path: %w", err)
	}

	if err := scaffoldProject(dir, modulePath); err != nil {
		return err
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Project created successfully!\n\n")
	fmt.Fprintf(stdout, "Next steps:\n")
	fmt.Fprintf(stdout, "  cd %s\n", dir)
	fmt.Fprintf(stdout, "  go get github.com/go-drift/flywire@latest\n")
	fmt.Fprintf(stdout, "  go mod tidy\n")
	fmt.Fprintf(stdout, "  go run .\n")
	return nil
}

// scaffoldProject creates the project directory and writes the template
// files. On failure the partially written directory is removed.
func scaffoldProject(dir, modulePath string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	fmt.Fprintf(stdout, "Creating new flywire project: %s\n", filepath.Base(dir))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data := templates.InitData{
		ModulePath: modulePath,
		AppName:    filepath.Base(dir),
		Interval:   engine.DefaultInterval.String(),
	}

	initFiles := []struct {
		templatePath string
		destName     string
	}{
		{"init/go.mod.tmpl", "go.mod"},
		{"init/flywire.yaml.tmpl", config.YAMLFile},
		{"init/main.go.tmpl", "main.go"},
		{"init/tree.yaml.tmpl", "tree.yaml"},
	}

	for _, f := range initFiles {
		if err := writeInitTemplate(dir, f.templatePath, f.destName, data); err != nil {
			safeRemoveAll(dir)
			return err
		}
		fmt.Fprintf(stdout, "  Created %s\n", f.destName)
	}

	return nil
}

func writeInitTemplate(projectDir, templatePath, destName string, data templates.InitData) error {
	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	out, err := templates.Render(destName, string(content), data)
	if err != nil {
		return fmt.Errorf("failed to render template %s: %w", templatePath, err)
	}

	destPath := filepath.Join(projectDir, destName)
	if err := os.WriteFile(destPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", destName, err)
	}
	return nil
}

// validateDirectory rejects directory paths that would be dangerous to
// create or clean up: filesystem roots, the current and parent directory,
// and root-level absolute paths such as /etc.
func validateDirectory(dir string) error {
	switch dir {
	case "", "/", ".", "..":
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if isVolumeRoot(dir) {
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if filepath.IsAbs(dir) && isVolumeRoot(filepath.Dir(dir)) {
		return fmt.Errorf("refusing to create project at root-level path %q", dir)
	}
	return nil
}

// isVolumeRoot reports whether dir is a filesystem root.
func isVolumeRoot(dir string) bool {
	return dir == filepath.VolumeName(dir)+string(filepath.Separator)
}

// safeRemoveAll removes dir unless validateDirectory rejects it, in which
// case it does nothing.
func safeRemoveAll(dir string) {
	if validateDirectory(dir) != nil {
		return
	}
	os.RemoveAll(dir)
}

var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// validateProjectName checks that a project name starts with a letter and
// contains only letters, digits, underscores, and hyphens.
func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	// Clearer messages for hidden dirs and flags than the regex gives.
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("project name cannot start with a dot")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("project name cannot start with a hyphen")
	}
	if !validProjectName.MatchString(name) {
		return fmt.Errorf("project name must start with a letter and contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}
