package runner

import (
	"context"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// registerControlHandlers registers setpoint, output and measurement handlers.
func (r *Runner) registerControlHandlers() {
	r.engine.RegisterHandler(ActionSetVoltage, r.handleSetVoltage)
	r.engine.RegisterHandler(ActionGetVoltage, r.handleGetVoltage)
	r.engine.RegisterHandler(ActionSetCurrent, r.handleSetCurrent)
	r.engine.RegisterHandler(ActionGetCurrent, r.handleGetCurrent)
	r.engine.RegisterHandler(ActionSetOutput, r.handleSetOutput)
	r.engine.RegisterHandler(ActionGetOutput, r.handleGetOutput)
	r.engine.RegisterHandler(ActionReadStatus, r.handleReadStatus)
}

func (r *Runner) handleSetVoltage(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.setpoint(step, state, r.registry.SetVoltage)
}

func (r *Runner) handleSetCurrent(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.setpoint(step, state, r.registry.SetCurrent)
}

func (r *Runner) setpoint(step *loader.Step, state *engine.ExecutionState, set func(vdc.Handle, float64) error) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}
	v, err := paramFloat(step.Params, ParamValue)
	if err != nil {
		return nil, err
	}
	return outcome(set(h, v)), nil
}

func (r *Runner) handleGetVoltage(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.reading(step, state, KeyVoltage, r.registry.Voltage)
}

func (r *Runner) handleGetCurrent(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.reading(step, state, KeyCurrent, r.registry.Current)
}

func (r *Runner) reading(step *loader.Step, state *engine.ExecutionState, key string, get func(vdc.Handle) (float64, error)) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}
	v, err := get(h)
	out := outcome(err)
	if err == nil {
		out[key] = v
	}
	return out, nil
}

func (r *Runner) handleSetOutput(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}
	enabled, err := paramBool(step.Params, ParamEnabled)
	if err != nil {
		return nil, err
	}
	return outcome(r.registry.SetOutputState(h, enabled)), nil
}

func (r *Runner) handleGetOutput(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}
	on, err := r.registry.OutputState(h)
	out := outcome(err)
	if err == nil {
		out[KeyOutput] = on
	}
	return out, nil
}

func (r *Runner) handleReadStatus(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}
	st, err := r.registry.ReadStatus(h)
	out := outcome(err)
	if err == nil {
		out[KeyOutput] = st.OutputState
		out[KeyVoltage] = st.Voltage
		out[KeyCurrent] = st.Current
		out[KeyPower] = st.Power
	}
	return out, nil
}
