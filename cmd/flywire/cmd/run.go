package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/flywire/cmd/flywire/internal/config"
	"github.com/go-drift/flywire/cmd/flywire/internal/demo"
	"github.com/go-drift/flywire/pkg/engine"
	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/surface"
)

// stdin feeds button clicks to interactive demos; replaced in tests.
var stdin io.Reader = os.Stdin

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run a demo application",
		Long: `Run a demo application on an in-memory surface, printing every widget
operation as it happens.

Applications:
  timer     Counts the seconds since it started
  counter   A count with + and - buttons; type a button label and press
            Enter to click it

Flags:
  -duration D     Stop after D (default: run until interrupted)
  -config PATH    Use PATH instead of flywire.yaml / flywire.toml
  -interval D     Override engine.interval
  -debug-port N   Serve /tree, /stats and /cycles on localhost:N
  -width W        Surface width (default 80)
  -height H       Surface height (default 24)

When the loop stops the final tree is printed as YAML.`,
		Usage: "flywire run <timer|counter> [-duration D] [-config PATH] [-interval D] [-debug-port N]",
		Run:   runRun,
	})
}

type runOptions struct {
	app       string
	duration  time.Duration
	config    string
	interval  time.Duration
	debugPort int
	width     int
	height    int
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := runOptions{}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.DurationVar(&opts.duration, "duration", 0, "")
	fs.StringVar(&opts.config, "config", "", "")
	fs.DurationVar(&opts.interval, "interval", 0, "")
	fs.IntVar(&opts.debugPort, "debug-port", -1, "")
	fs.IntVar(&opts.width, "width", 80, "")
	fs.IntVar(&opts.height, "height", 24, "")

	positional, err := parseFlags(fs, args)
	if err != nil {
		return opts, err
	}
	if len(positional) != 1 {
		return opts, fmt.Errorf("exactly one application is required (%s)\n\nUsage: flywire run <app>", strings.Join(demo.Names(), " or "))
	}
	opts.app = positional[0]
	return opts, nil
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}

	root, err := demo.New(opts.app)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(config.FindProjectRoot(wd), opts.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.interval > 0 {
		cfg.Interval = opts.interval
	}
	if opts.debugPort >= 0 {
		cfg.DebugPort = opts.debugPort
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = logger.With("app", cfg.AppName)

	mem := surface.NewMemory(opts.width, opts.height)
	mem.Out = stdout
	eng := engine.New(engine.Options{
		Registry:     mem.Registry(),
		Surface:      mem,
		Interval:     cfg.Interval,
		Logger:       logger,
		ErrorHandler: &errors.LogHandler{Logger: logger},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	fmt.Fprintf(stdout, "# %s\n", cfg.AppTitle)
	if err := eng.Mount(root); err != nil {
		return err
	}

	if cfg.DebugPort > 0 {
		port, err := eng.StartDebugServer(cfg.DebugPort)
		if err != nil {
			eng.Unmount()
			return fmt.Errorf("debug server: %w", err)
		}
		logger.Info("debug server listening", "url", fmt.Sprintf("http://localhost:%d", port))
	}

	if opts.app == "counter" {
		go feedClicks(stdin, eng, mem)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		eng.Stop()
		eng.StopDebugServer()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	stats := eng.Stats()
	logger.Info("run finished", "cycles", stats.Cycles, "adds", stats.Adds, "changes", stats.Changes, "removes", stats.Removes)

	if snap := eng.Snapshot(); snap != nil {
		data, err := snap.EncodeYAML()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "# final tree\n%s", data)
	}
	return nil
}

// feedClicks turns each input line into a click on the button with that
// label, run on the engine loop.
func feedClicks(r io.Reader, eng *engine.Engine, mem *surface.Memory) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label == "" {
			continue
		}
		eng.Dispatch(func() {
			if !mem.Click(label) {
				fmt.Fprintf(stderr, "no button %q\n", label)
			}
		})
	}
}
