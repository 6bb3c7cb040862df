// Package runner drives a vdc.Registry from bench scripts.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/pkg/log"
	"github.com/vdcsim/vdc-go/pkg/uut"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// Config configures a Runner.
type Config struct {
	// Registry is the registry under test. Required.
	Registry *vdc.Registry

	// Events must be one of the registry's event loggers for count_events
	// steps to see anything. Optional.
	Events *log.MemoryLogger

	// Loads are the named load models available to every script.
	Loads map[string]vdc.LoadModel

	// Tolerance is the default absolute tolerance of *_approx expectations.
	Tolerance float64

	// StopOnFirstFailure stops a run after the first failed script.
	StopOnFirstFailure bool

	// OnScriptComplete is called after each script.
	OnScriptComplete func(*engine.ScriptResult)

	// Logger receives progress messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// Runner executes bench scripts against a registry.
type Runner struct {
	config   *Config
	engine   *engine.Engine
	registry *vdc.Registry
	events   *log.MemoryLogger
	logger   *slog.Logger
}

// New creates a runner. It panics if config has no Registry.
func New(config *Config) *Runner {
	if config == nil || config.Registry == nil {
		panic("runner: registry is required")
	}

	r := &Runner{
		config:   config,
		registry: config.Registry,
		events:   config.Events,
		logger:   config.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.engine = engine.NewWithConfig(&engine.Config{
		Tolerance:          config.Tolerance,
		StopOnFirstFailure: config.StopOnFirstFailure,
		SetupScript:        r.setupScript,
		OnScriptComplete:   config.OnScriptComplete,
	})

	r.registerLifecycleHandlers()
	r.registerControlHandlers()
	r.registerLoadHandlers()
	r.registerEventHandlers()

	return r
}

// Engine returns the underlying engine.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Registry returns the registry under test.
func (r *Runner) Registry() *vdc.Registry {
	return r.registry
}

// Run executes scripts in order. The registry is reset before each one.
func (r *Runner) Run(ctx context.Context, name string, scripts []*loader.Script) *engine.SuiteResult {
	r.logger.Info("bench run starting", slog.String("suite", name), slog.Int("scripts", len(scripts)),
		slog.String("session", r.registry.SessionID()))

	result := r.engine.RunSuite(ctx, name, scripts)

	r.logger.Info("bench run finished",
		slog.Int("passed", result.PassCount),
		slog.Int("failed", result.FailCount),
		slog.Int("skipped", result.SkipCount),
		slog.Duration("duration", result.Duration))
	return result
}

// RunScript executes a single script after resetting the registry.
func (r *Runner) RunScript(ctx context.Context, s *loader.Script) *engine.ScriptResult {
	return r.engine.Run(ctx, s)
}

// setupScript resets the registry and installs a fresh bench state with
// the configured loads overlaid by the script's own.
func (r *Runner) setupScript(ctx context.Context, s *loader.Script, state *engine.ExecutionState) error {
	r.registry.Reset()
	if r.events != nil {
		r.events.Reset()
	}

	loads := maps.Clone(r.config.Loads)
	if loads == nil {
		loads = make(map[string]vdc.LoadModel)
	}
	scriptLoads, err := uut.BuildAll(s.Loads)
	if err != nil {
		return fmt.Errorf("script %s: %w", s.ID, err)
	}
	maps.Copy(loads, scriptLoads)

	installBench(state, newBench(loads))
	r.logger.Debug("script setup", slog.String("script", s.ID), slog.Int("loads", len(loads)))
	return nil
}

// Session runs individual steps against the registry without resetting it
// between them. The interactive shell uses one.
type Session struct {
	runner *Runner
	state  *engine.ExecutionState
	steps  int
}

// NewSession creates a session sharing the runner's registry.
func (r *Runner) NewSession(ctx context.Context) *Session {
	state := r.engine.NewState(ctx)
	installBench(state, newBench(maps.Clone(r.config.Loads)))
	return &Session{runner: r, state: state}
}

// Exec runs one step.
func (s *Session) Exec(ctx context.Context, step *loader.Step) *engine.StepResult {
	res := s.runner.engine.ExecuteStep(ctx, step, s.steps, s.state)
	s.steps++
	return res
}

// Aliases returns the PSU aliases known to the session and their handles.
func (s *Session) Aliases() map[string]vdc.Handle {
	return maps.Clone(benchFrom(s.state).handles)
}

// Loads returns the load names available to connect_uut.
func (s *Session) Loads() []string {
	return benchFrom(s.state).loadNames()
}
