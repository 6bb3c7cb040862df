// Package engine provides bench script execution.
package engine

import (
	"context"
	"time"

	"github.com/vdcsim/vdc-go/internal/bench/loader"
)

// ScriptResult represents the outcome of a single script.
type ScriptResult struct {
	// Script is the script that was executed.
	Script *loader.Script

	// Passed indicates if all steps passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// StepResults contains results for each executed step.
	StepResults []*StepResult

	// Duration is how long the script took.
	Duration time.Duration

	// StartTime when the script started.
	StartTime time.Time

	// EndTime when the script finished.
	EndTime time.Time

	// Skipped indicates if the script was skipped.
	Skipped bool

	// SkipReason explains why the script was skipped.
	SkipReason string
}

// StepResult represents the outcome of a single step.
type StepResult struct {
	// Step is the step that was executed.
	Step *loader.Step

	// StepIndex is the index of this step (0-based).
	StepIndex int

	// Passed indicates if the step passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// ExpectResults maps expectation keys to their results.
	ExpectResults map[string]*ExpectResult

	// Duration is how long the step took.
	Duration time.Duration

	// Output contains the values produced by the step.
	Output map[string]any
}

// ExpectResult represents the result of checking an expectation.
type ExpectResult struct {
	// Key is the expectation key (e.g., "voltage_approx").
	Key string

	// Expected is the expected value.
	Expected any

	// Actual is the actual value.
	Actual any

	// Passed indicates if the expectation was met.
	Passed bool

	// Message describes the result.
	Message string
}

// SuiteResult represents the outcome of running a set of scripts.
type SuiteResult struct {
	// SuiteName identifies the run.
	SuiteName string

	// Results contains results for each script.
	Results []*ScriptResult

	// PassCount is the number of passed scripts.
	PassCount int

	// FailCount is the number of failed scripts.
	FailCount int

	// SkipCount is the number of skipped scripts.
	SkipCount int

	// Duration is the total time for all scripts.
	Duration time.Duration
}

// ActionHandler processes a script step.
// Returns outputs checked by expectations, and an error if the step could
// not be carried out at all (unknown alias, missing parameter). Failed
// registry calls are outputs, not errors.
type ActionHandler func(ctx context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error)

// ExpectChecker checks an expectation against the step outputs.
type ExpectChecker func(key string, expected any, state *ExecutionState) *ExpectResult

// ExecutionState holds state during script execution.
type ExecutionState struct {
	// Outputs of the most recent step.
	Outputs map[string]any

	// Context for cancellation.
	Context context.Context

	// Tolerance is the default for *_approx expectations.
	Tolerance float64

	// Custom state that handlers can use.
	Custom map[string]any
}

// NewExecutionState creates a new execution state.
func NewExecutionState(ctx context.Context) *ExecutionState {
	return &ExecutionState{
		Outputs:   make(map[string]any),
		Custom:    make(map[string]any),
		Context:   ctx,
		Tolerance: DefaultTolerance,
	}
}

// Get retrieves a value from outputs.
func (s *ExecutionState) Get(key string) (any, bool) {
	v, ok := s.Outputs[key]
	return v, ok
}

// Set stores a value in outputs.
func (s *ExecutionState) Set(key string, value any) {
	s.Outputs[key] = value
}

// DefaultTolerance is the absolute tolerance of *_approx expectations.
const DefaultTolerance = 1e-9

// Config configures the engine.
type Config struct {
	// Tolerance overrides DefaultTolerance when positive.
	Tolerance float64

	// StopOnFirstFailure stops a suite after the first failed script.
	StopOnFirstFailure bool

	// SetupScript runs before the first step of every script. An error
	// fails the script without running any step.
	SetupScript func(ctx context.Context, s *loader.Script, state *ExecutionState) error

	// OnScriptComplete is called after each script of a suite.
	OnScriptComplete func(*ScriptResult)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Tolerance: DefaultTolerance,
	}
}
