// Package logs builds the slog loggers used by the engine and the CLI.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "FLYWIRE_LOG_LEVEL"

// Format selects the primary handler.
type Format string

const (
	// FormatAuto picks text for terminals and JSON otherwise.
	FormatAuto Format = ""
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	// Level is shared by every handler New creates. Nil allocates one at
	// info level.
	Level *slog.LevelVar
	Format Format
	// Extra handlers receive every record alongside the primary one.
	Extra []slog.Handler
}

// New returns a logger writing to w and fanning out to opts.Extra.
func New(w io.Writer, opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = new(slog.LevelVar)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	format := opts.Format
	if format == FormatAuto {
		format = FormatJSON
		if IsTerminal(w) {
			format = FormatText
		}
	}

	var primary slog.Handler
	if format == FormatJSON {
		primary = slog.NewJSONHandler(w, handlerOpts)
	} else {
		primary = slog.NewTextHandler(w, handlerOpts)
	}
	if len(opts.Extra) == 0 {
		return slog.New(primary)
	}
	handlers := append([]slog.Handler{primary}, opts.Extra...)
	return slog.New(slogmulti.Fanout(handlers...))
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromEnv applies EnvLogLevel to level when set and valid. It reports
// whether the level changed.
func LevelFromEnv(level *slog.LevelVar) bool {
	raw, ok := os.LookupEnv(EnvLogLevel)
	if !ok {
		return false
	}
	parsed, err := ParseLevel(raw)
	if err != nil {
		return false
	}
	level.Set(parsed)
	return true
}
