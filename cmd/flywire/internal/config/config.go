// Package config loads the optional flywire.yaml or flywire.toml project
// configuration and resolves defaults.
package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/flywire/pkg/engine"
	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/logs"
)

// File names looked up in the project root, in order.
const (
	YAMLFile = "flywire.yaml"
	TOMLFile = "flywire.toml"
)

// Config represents the optional configuration file.
type Config struct {
	App    AppConfig    `yaml:"app" toml:"app"`
	Engine EngineConfig `yaml:"engine" toml:"engine"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name  string `yaml:"name,omitempty" toml:"name,omitempty"`
	Title string `yaml:"title,omitempty" toml:"title,omitempty"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	// Interval is a duration string such as "100ms".
	Interval  string `yaml:"interval,omitempty" toml:"interval,omitempty"`
	DebugPort int    `yaml:"debug_port,omitempty" toml:"debug_port,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
	// File, when set, receives a JSON copy of every log record. Relative
	// paths are resolved against the project root.
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	Source     string
	ModulePath string
	AppName    string
	AppTitle   string
	Interval   time.Duration
	DebugPort  int
	LogLevel   slog.Level
	LogFormat  logs.Format
	LogFile    string
}

// Load reads a configuration file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// LoadOptional reads flywire.yaml or, failing that, flywire.toml from dir.
// It returns an empty Config and no path when neither exists.
func LoadOptional(dir string) (*Config, string, error) {
	for _, name := range []string{YAMLFile, TOMLFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", err
		}
		cfg, err := Load(path)
		return cfg, path, err
	}
	return &Config{}, "", nil
}

// Resolve loads the configuration for the project at dir and resolves
// defaults. A non-empty path overrides the file lookup.
func Resolve(dir, path string) (*Resolved, error) {
	var (
		cfg *Config
		err error
	)
	if path != "" {
		cfg, err = Load(path)
	} else {
		cfg, path, err = LoadOptional(dir)
	}
	if err != nil {
		return nil, err
	}

	modulePath, _ := readModulePath(dir)

	r := &Resolved{
		Root:       dir,
		Source:     path,
		ModulePath: modulePath,
		AppName:    strings.TrimSpace(cfg.App.Name),
		AppTitle:   strings.TrimSpace(cfg.App.Title),
		Interval:   engine.DefaultInterval,
		DebugPort:  cfg.Engine.DebugPort,
	}
	if r.AppName == "" {
		r.AppName = defaultAppName(modulePath, dir)
	}
	if r.AppTitle == "" {
		r.AppTitle = r.AppName
	}

	if raw := strings.TrimSpace(cfg.Engine.Interval); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, &errors.ConfigError{Path: path, Key: "engine.interval", Err: err}
		}
		if interval <= 0 {
			return nil, &errors.ConfigError{Path: path, Key: "engine.interval", Err: fmt.Errorf("must be positive (got %s)", raw)}
		}
		r.Interval = interval
	}

	if r.DebugPort < 0 || r.DebugPort > 65535 {
		return nil, &errors.ConfigError{Path: path, Key: "engine.debug_port", Err: fmt.Errorf("out of range (got %d)", r.DebugPort)}
	}

	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, &errors.ConfigError{Path: path, Key: "log.level", Err: err}
	}
	r.LogLevel = level

	switch format := logs.Format(strings.ToLower(strings.TrimSpace(cfg.Log.Format))); format {
	case logs.FormatAuto, logs.FormatText, logs.FormatJSON:
		r.LogFormat = format
	default:
		return nil, &errors.ConfigError{Path: path, Key: "log.format", Err: fmt.Errorf("unknown format %q (use text or json)", cfg.Log.Format)}
	}

	if file := strings.TrimSpace(cfg.Log.File); file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		r.LogFile = file
	}

	return r, nil
}

// FindProjectRoot walks up from dir to find go.mod. When none is found it
// returns dir itself.
func FindProjectRoot(dir string) string {
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func readModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "flywire_app"
	}
	return base
}
