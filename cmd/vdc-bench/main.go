// Command vdc-bench drives the virtual DC power-supply registry from bench
// scripts or an interactive shell.
//
// Usage:
//
//	vdc-bench <command> [flags] [paths...]
//
// Commands:
//
//	run      Run bench scripts and report the results
//	shell    Start an interactive shell against a fresh registry
//
// Examples:
//
//	# Run every script under testdata/bench
//	vdc-bench run ./testdata/bench
//
//	# Run smoke scripts with a custom profile, capturing events
//	vdc-bench run -config bench.yaml -tags smoke -event-log run.vlog ./scripts
//
//	# JSON report for CI
//	vdc-bench run -format json -o report.json ./scripts
//
//	# Interactive shell with the loads from a config file
//	vdc-bench shell -config bench.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/vdcsim/vdc-go/cmd/vdc-bench/interactive"
	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/internal/bench/reporter"
	"github.com/vdcsim/vdc-go/internal/bench/runner"
	"github.com/vdcsim/vdc-go/pkg/log"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

const usage = `vdc-bench - Virtual DC Power Supply Bench

Usage:
  vdc-bench <command> [flags] [paths...]

Commands:
  run      Run bench scripts and report the results
  shell    Start an interactive shell against a fresh registry

Use "vdc-bench <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		os.Exit(runScripts(args))
	case "shell":
		os.Exit(runShell(args))
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// benchFlags are shared by run and shell.
type benchFlags struct {
	config   *string
	eventLog *string
	logLevel *string
	trace    *bool
}

func addBenchFlags(fs *flag.FlagSet) benchFlags {
	return benchFlags{
		config:   fs.String("config", "", "Bench config file (YAML: profile, loads)"),
		eventLog: fs.String("event-log", "", "Append every registry call to this CBOR event log"),
		logLevel: fs.String("log-level", "warn", "Log level (debug, info, warn, error)"),
		trace:    fs.Bool("trace", false, "Log every registry call at debug level"),
	}
}

// bench is a configured registry with its event sinks.
type bench struct {
	registry *vdc.Registry
	events   *log.MemoryLogger
	file     *log.FileLogger
	loads    map[string]vdc.LoadModel
	logger   *slog.Logger
}

// Close closes the event log, logging how many events it holds. Later
// calls do nothing.
func (b *bench) Close() error {
	f := b.file
	if f == nil {
		return nil
	}
	b.file = nil

	written := f.Written()
	if err := f.Close(); err != nil {
		b.logger.Error("event log incomplete", slog.String("path", f.Path()),
			slog.Int("written", written), slog.Any("error", err))
		return err
	}
	b.logger.Info("event log closed", slog.String("path", f.Path()), slog.Int("events", written))
	return nil
}

// syncEvents flushes the event log after a script so an interrupted run
// keeps every completed script.
func (b *bench) syncEvents(res *engine.ScriptResult) {
	if b.file == nil {
		return
	}
	if err := b.file.Sync(); err != nil {
		b.logger.Warn("event log sync failed", slog.String("script", res.Script.ID), slog.Any("error", err))
	}
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func setupBench(f benchFlags, logOut io.Writer) (*bench, error) {
	logger, err := newLogger(*f.logLevel, logOut)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	cfg, err := loadConfig(*f.config)
	if err != nil {
		return nil, err
	}

	b := &bench{
		events: log.NewMemoryLogger(),
		loads:  cfg.loads(),
		logger: logger,
	}

	sinks := []log.Logger{b.events}
	if *f.eventLog != "" {
		b.file, err = log.NewFileLogger(*f.eventLog)
		if err != nil {
			return nil, fmt.Errorf("failed to create event log: %w", err)
		}
		sinks = append(sinks, b.file)
	}
	if *f.trace {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	runID := uuid.NewString()
	b.registry = vdc.New(
		vdc.WithProfile(cfg.profile()),
		vdc.WithSessionID(runID),
		vdc.WithEventLogger(log.NewMultiLogger(sinks...)),
		vdc.WithSlogLogger(logger.With("component", "vdc")),
	)
	logger.Info("bench ready", slog.String("session", runID), slog.String("model", cfg.profile().Name),
		slog.Int("loads", len(b.loads)))
	return b, nil
}

func runScripts(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vdc-bench run - Run bench scripts

Usage:
  vdc-bench run [flags] [paths...]

Paths may be script files or directories (searched recursively).
Defaults to ./testdata/bench.

Flags:
`)
		fs.PrintDefaults()
	}

	bf := addBenchFlags(fs)
	format := fs.String("format", "text", "Report format (text, json, junit)")
	output := fs.String("o", "", "Report file (default: stdout)")
	verbose := fs.Bool("verbose", false, "Show step details (pretty JSON with -format json)")
	tags := fs.String("tags", "", "Comma-separated tags; run only scripts carrying one of them")
	stop := fs.Bool("stop-on-failure", false, "Stop after the first failed script")
	tolerance := fs.Float64("tolerance", 0, "Default tolerance of *_approx expectations")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"./testdata/bench"}
	}

	scripts, err := loader.LoadPaths(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	scripts = loader.FilterByTags(scripts, splitList(*tags))
	loader.SortByID(scripts)
	if len(scripts) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no scripts selected")
		return 1
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create report file: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	rep, err := reporter.New(*format, w, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	b, err := setupBench(bf, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer b.Close()

	r := runner.New(&runner.Config{
		Registry:           b.registry,
		Events:             b.events,
		Loads:              b.loads,
		Tolerance:          *tolerance,
		StopOnFirstFailure: *stop,
		OnScriptComplete:   b.syncEvents,
		Logger:             b.logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result := r.Run(ctx, strings.Join(paths, " "), scripts)
	rep.ReportSuite(result)

	if err := b.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: event log: %v\n", err)
		return 1
	}

	if result.FailCount > 0 || len(result.Results) < len(scripts) {
		return 1
	}
	return 0
}

func runShell(args []string) int {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vdc-bench shell - Interactive bench shell

Usage:
  vdc-bench shell [flags]

Flags:
`)
		fs.PrintDefaults()
	}
	bf := addBenchFlags(fs)

	if err := fs.Parse(args); err != nil {
		return 1
	}

	b, err := setupBench(bf, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer b.Close()

	r := runner.New(&runner.Config{
		Registry: b.registry,
		Events:   b.events,
		Loads:    b.loads,
		Logger:   b.logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sh, err := interactive.New(r, b.events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	sh.Run(ctx, cancel)
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
