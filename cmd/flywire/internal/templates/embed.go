// Package templates provides embedded template files for project creation.
package templates

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed init/*
var FS embed.FS

// InitData contains the data for init template substitution.
type InitData struct {
	ModulePath string // e.g., "github.com/user/clock"
	AppName    string // e.g., "clock"
	Interval   string // e.g., "100ms"
}

// Render processes a template string with the given data.
func Render(name, content string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ListFiles returns all files in the embedded filesystem under the given path.
func ListFiles(path string) ([]string, error) {
	var files []string

	err := fs.WalkDir(FS, path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})

	return files, err
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(path string) ([]byte, error) {
	return FS.ReadFile(path)
}

// InitFiles returns the init template files.
func InitFiles() ([]string, error) {
	return ListFiles("init")
}
