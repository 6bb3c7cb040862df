package runner

import (
	"context"
	"errors"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

// registerEventHandlers registers event inspection and housekeeping handlers.
func (r *Runner) registerEventHandlers() {
	r.engine.RegisterHandler(ActionCountEvents, r.handleCountEvents)
	r.engine.RegisterHandler(ActionReset, r.handleReset)
}

// handleCountEvents counts captured events matching the step filter. Only
// events of the current script are visible.
func (r *Runner) handleCountEvents(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	if r.events == nil {
		return nil, errors.New("event capture is not enabled")
	}

	var f log.Filter
	if name := paramString(step.Params, ParamOperation, ""); name != "" {
		op, err := api.ParseOperation(name)
		if err != nil {
			return nil, err
		}
		f.Operation = &op
	}
	if name := paramString(step.Params, ParamCategory, ""); name != "" {
		c, err := log.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		f.Category = &c
	}
	if name := paramString(step.Params, ParamResult, ""); name != "" {
		res, err := api.ParseResult(name)
		if err != nil {
			return nil, err
		}
		f.Result = &res
	}
	if _, ok := step.Params[ParamFailuresOnly]; ok {
		only, err := paramBool(step.Params, ParamFailuresOnly)
		if err != nil {
			return nil, err
		}
		f.FailuresOnly = only
	}
	_, byAlias := step.Params[ParamPSU]
	_, byHandle := step.Params[ParamHandle]
	if byAlias || byHandle {
		h, err := benchFrom(state).resolve(step.Params)
		if err != nil {
			return nil, err
		}
		raw := uint32(h)
		f.Handle = &raw
	}

	return map[string]any{KeyCount: len(r.events.Filter(f))}, nil
}

// handleReset destroys every instance and forgets all aliases.
func (r *Runner) handleReset(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	r.registry.Reset()
	installBench(state, newBench(benchFrom(state).loads))
	return map[string]any{KeyHandles: len(r.registry.Handles())}, nil
}
