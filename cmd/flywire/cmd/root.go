// Package cmd implements the flywire CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (init, run, diff, render).
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/flywire/cmd/flywire/internal/config"
	"github.com/go-drift/flywire/pkg/logs"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "flywire",
	Short: "flywire - declarative component trees reconciled onto widgets",
	Long: `flywire renders declarative component trees onto a retained widget
surface, diffing each new render against the previous one and patching only
what changed.

Use "flywire <command> --help" for more information about a command.`,
	Usage: "flywire <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// logLevelFlag holds --log-level; it wins over the environment and the
// config file.
var logLevelFlag string

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	logLevelFlag = ""

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "flywire version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--log-level":
			if i+1 >= len(args) {
				return fmt.Errorf("--log-level requires a level")
			}
			logLevelFlag = args[i+1]
			i++
		default:
			if strings.HasPrefix(arg, "--log-level=") {
				logLevelFlag = strings.TrimPrefix(arg, "--log-level=")
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

// newLogger builds the CLI logger on stderr. Precedence for the level is
// --log-level, then FLYWIRE_LOG_LEVEL, then the config file. When the config
// names a log file, records are fanned out to it as JSON; the returned close
// function releases it.
func newLogger(cfg *config.Resolved) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	format := logs.FormatAuto
	if cfg != nil {
		level.Set(cfg.LogLevel)
		format = cfg.LogFormat
	}
	logs.LevelFromEnv(level)
	if logLevelFlag != "" {
		parsed, err := logs.ParseLevel(logLevelFlag)
		if err != nil {
			return nil, nil, err
		}
		level.Set(parsed)
	}

	opts := logs.Options{Level: level, Format: format}
	closeFn := func() error { return nil }
	if cfg != nil && cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		opts.Extra = append(opts.Extra, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeFn = f.Close
	}
	return logs.New(stderr, opts), closeFn, nil
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --log-level LEVEL    debug, info, warn or error")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Environment:")
	fmt.Fprintf(stdout, "  %-20s Log level (lower priority than --log-level)\n", logs.EnvLogLevel)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  flywire init clock                  Create a new project in ./clock")
	fmt.Fprintln(stdout, "  flywire run timer -duration 5s      Run the timer demo for five seconds")
	fmt.Fprintln(stdout, "  flywire diff old.yaml new.yaml      Print the edit script between two trees")
	fmt.Fprintln(stdout, "  flywire render tree.yaml out.png    Paint a tree to a PNG")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
