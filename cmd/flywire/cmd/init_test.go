package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/flywire/cmd/flywire/internal/config"
)

func TestValidateDirectory(t *testing.T) {
	type tc struct {
		name    string
		dir     string
		wantErr bool
	}
	tests := []tc{
		{"simple name", "clock", false},
		{"relative path", "projects/clock", false},
		{"deep relative", "a/b/c/clock", false},

		{"empty", "", true},
		{"root slash", "/", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests,
			tc{"drive root", `C:\`, true},
			tc{"root-level C:\\Users", `C:\Users`, true},
			tc{"nested windows path", `C:\Users\me\projects\clock`, false},
		)
	} else {
		tests = append(tests,
			tc{"absolute nested", "/home/user/projects/clock", false},
			tc{"root-level /etc", "/etc", true},
			tc{"root-level /tmp", "/tmp", true},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDirectory(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDirectory(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "clock", false},
		{"with hyphen", "my-clock", false},
		{"with underscore", "my_clock", false},
		{"with numbers", "clock2", false},

		{"empty", "", true},
		{"starts with dot", ".hidden", true},
		{"starts with hyphen", "-bad", true},
		{"starts with number", "1clock", true},
		{"has spaces", "my clock", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestScaffoldProject(t *testing.T) {
	captureOutput(t)
	dir := filepath.Join(t.TempDir(), "projects", "clock")

	if err := scaffoldProject(dir, "github.com/user/clock"); err != nil {
		t.Fatalf("scaffoldProject() = %v", err)
	}

	for _, name := range []string{"go.mod", "main.go", "tree.yaml", config.YAMLFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should exist: %v", name, err)
		}
	}

	gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gomod), "module github.com/user/clock") {
		t.Errorf("go.mod = %q", gomod)
	}

	cfg, err := config.Resolve(dir, "")
	if err != nil {
		t.Fatalf("generated config does not resolve: %v", err)
	}
	if cfg.AppName != "clock" || cfg.ModulePath != "github.com/user/clock" || cfg.Interval != 100*time.Millisecond {
		t.Errorf("resolved config = %+v", cfg)
	}
}

func TestScaffoldProject_TreeRenders(t *testing.T) {
	captureOutput(t)
	dir := filepath.Join(t.TempDir(), "clock")
	if err := scaffoldProject(dir, "clock"); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "tree.png")
	if err := Execute([]string{"render", filepath.Join(dir, "tree.yaml"), out}); err != nil {
		t.Fatalf("render sample tree: %v", err)
	}
}

func TestScaffoldProject_RejectsExistingDirectory(t *testing.T) {
	captureOutput(t)
	dir := t.TempDir()
	if err := scaffoldProject(dir, "clock"); err == nil {
		t.Fatal("expected error for existing directory")
	}
}

func TestRunInit_Errors(t *testing.T) {
	captureOutput(t)
	base := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "directory is required"},
		{"tilde", []string{"~/clock"}, "tilde"},
		{"root", []string{"/"}, "not a valid project location"},
		{"dot", []string{"."}, "not a valid project location"},
		{"empty module", []string{filepath.Join(base, "a"), ""}, "module path cannot be empty"},
		{"bad module", []string{filepath.Join(base, "b"), "bad path/with space"}, "invalid module path"},
		{"bad name", []string{filepath.Join(base, "1clock")}, "invalid project name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runInit(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("runInit(%q) = %v, want error containing %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestRunInit_PrintsNextSteps(t *testing.T) {
	out, _ := captureOutput(t)
	dir := filepath.Join(t.TempDir(), "clock")

	if err := Execute([]string{"init", dir, "example.com/clock"}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Created go.mod", "Created flywire.yaml", "cd " + dir, "go mod tidy"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
