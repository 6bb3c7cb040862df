package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/pkg/api"
)

// Engine executes bench scripts.
type Engine struct {
	config   *Config
	handlers map[string]ActionHandler
	checkers map[string]ExpectChecker
	mu       sync.RWMutex
}

// New creates a new engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new engine with the given configuration. The
// engine keeps its own copy; defaults are filled in on the copy.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	config = &cfg
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultTolerance
	}

	e := &Engine{
		config:   config,
		handlers: make(map[string]ActionHandler),
		checkers: make(map[string]ExpectChecker),
	}

	e.RegisterChecker(CheckerNameDefault, defaultChecker)
	e.RegisterChecker(CheckerNameResult, resultChecker)

	return e
}

// RegisterHandler registers an action handler.
func (e *Engine) RegisterHandler(action string, handler ActionHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[action] = handler
}

// RegisterChecker registers an expectation checker.
func (e *Engine) RegisterChecker(key string, checker ExpectChecker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkers[key] = checker
}

// Actions returns the registered action names in sorted order.
func (e *Engine) Actions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewState creates an execution state configured for this engine.
func (e *Engine) NewState(ctx context.Context) *ExecutionState {
	state := NewExecutionState(ctx)
	state.Tolerance = e.config.Tolerance
	return state
}

// Run executes a single script.
func (e *Engine) Run(ctx context.Context, s *loader.Script) *ScriptResult {
	result := &ScriptResult{
		Script:    s,
		StartTime: time.Now(),
	}
	finish := func() *ScriptResult {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result
	}

	if s.Skip {
		result.Skipped = true
		result.SkipReason = s.SkipReason
		if result.SkipReason == "" {
			result.SkipReason = "skipped by script definition"
		}
		return finish()
	}

	state := e.NewState(ctx)

	if e.config.SetupScript != nil {
		if err := e.config.SetupScript(ctx, s, state); err != nil {
			result.Error = fmt.Errorf("script setup failed: %w", err)
			return finish()
		}
	}

	result.Passed = true
	for i := range s.Steps {
		if err := ctx.Err(); err != nil {
			result.Passed = false
			result.Error = err
			break
		}

		stepResult := e.ExecuteStep(ctx, &s.Steps[i], i, state)
		result.StepResults = append(result.StepResults, stepResult)

		if !stepResult.Passed {
			result.Passed = false
			result.Error = fmt.Errorf("step %d (%s): %w", i+1, s.Steps[i].Action, stepResult.Error)
			break
		}
	}

	return finish()
}

// ExecuteStep runs one step against state and checks its expectations.
//
// A step whose handler reports a result but that has no "result"
// expectation must succeed.
func (e *Engine) ExecuteStep(ctx context.Context, step *loader.Step, index int, state *ExecutionState) *StepResult {
	result := &StepResult{
		Step:          step,
		StepIndex:     index,
		ExpectResults: make(map[string]*ExpectResult),
		Output:        make(map[string]any),
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	e.mu.RLock()
	handler, exists := e.handlers[step.Action]
	e.mu.RUnlock()

	if !exists {
		result.Error = fmt.Errorf("unknown action: %s", step.Action)
		return result
	}

	outputs, err := handler(ctx, step, state)
	if err != nil {
		result.Error = err
		return result
	}

	state.Outputs = make(map[string]any, len(outputs))
	for k, v := range outputs {
		state.Set(k, v)
		result.Output[k] = v
	}

	expect := step.Expect
	if _, ok := expect[KeyResult]; !ok {
		if _, reported := outputs[KeyResult]; reported {
			expect = withImplicitSuccess(step.Expect)
		}
	}

	result.Passed = true
	for _, key := range sortedKeys(expect) {
		er := e.checkExpectation(key, expect[key], state)
		result.ExpectResults[key] = er
		if !er.Passed && result.Passed {
			result.Passed = false
			result.Error = fmt.Errorf("expectation failed: %s - %s", key, er.Message)
		}
	}

	return result
}

func withImplicitSuccess(expect map[string]any) map[string]any {
	out := make(map[string]any, len(expect)+1)
	for k, v := range expect {
		out[k] = v
	}
	out[KeyResult] = api.ResultSuccess.String()
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkExpectation checks a single expectation. Keys ending in SuffixApprox
// without a dedicated checker are compared numerically within tolerance.
func (e *Engine) checkExpectation(key string, expected any, state *ExecutionState) *ExpectResult {
	e.mu.RLock()
	checker, exists := e.checkers[key]
	if !exists {
		if strings.HasSuffix(key, SuffixApprox) {
			checker = approxChecker
		} else {
			checker = e.checkers[CheckerNameDefault]
		}
	}
	e.mu.RUnlock()

	return checker(key, expected, state)
}

// RunSuite executes scripts in order.
func (e *Engine) RunSuite(ctx context.Context, name string, scripts []*loader.Script) *SuiteResult {
	result := &SuiteResult{SuiteName: name}
	if result.SuiteName == "" {
		result.SuiteName = "Bench Suite"
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	for _, s := range scripts {
		if ctx.Err() != nil {
			return result
		}

		sr := e.Run(ctx, s)
		result.Results = append(result.Results, sr)

		switch {
		case sr.Skipped:
			result.SkipCount++
		case sr.Passed:
			result.PassCount++
		default:
			result.FailCount++
		}

		if e.config.OnScriptComplete != nil {
			e.config.OnScriptComplete(sr)
		}

		if !sr.Passed && !sr.Skipped && e.config.StopOnFirstFailure {
			break
		}
	}

	return result
}
