package runner

import (
	"context"
	"fmt"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// registerLifecycleHandlers registers instance lifecycle and introspection handlers.
func (r *Runner) registerLifecycleHandlers() {
	r.engine.RegisterHandler(ActionCreate, r.handleCreate)
	r.engine.RegisterHandler(ActionDestroy, r.handleDestroy)
	r.engine.RegisterHandler(ActionGetModel, r.handleGetModel)
	r.engine.RegisterHandler(ActionVoltageSpec, r.handleVoltageSpec)
	r.engine.RegisterHandler(ActionCurrentSpec, r.handleCurrentSpec)
}

// handleCreate creates an instance and binds it to the psu alias. A failed
// create leaves any previous binding of the alias in place.
func (r *Runner) handleCreate(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	b := benchFrom(state)
	alias := paramString(step.Params, ParamPSU, DefaultPSU)

	h, err := r.registry.Create()
	out := outcome(err)
	out[KeyHandle] = uint32(h)
	if err == nil {
		b.handles[alias] = h
		delete(b.uuts, h)
	}
	return out, nil
}

func (r *Runner) handleDestroy(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	b := benchFrom(state)
	h, err := b.resolve(step.Params)
	if err != nil {
		return nil, err
	}

	err = r.registry.Destroy(h)
	if err == nil {
		delete(b.uuts, h)
	}
	return outcome(err), nil
}

// handleGetModel reads the model name. With buffer_size it goes through
// ReadModel with a buffer of that size (0 makes a size query); otherwise
// it reports the name and its required buffer size.
func (r *Runner) handleGetModel(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}

	if _, sized := step.Params[ParamBufferSize]; !sized {
		model, err := r.registry.Model(h)
		out := outcome(err)
		if err == nil {
			out[KeyModel] = model
			out[KeySize] = len(model) + 1
		}
		return out, nil
	}

	n, err := paramInt(step.Params, ParamBufferSize, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("buffer_size %d is negative", n)
	}

	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
	}
	size, err := r.registry.ReadModel(h, buf)
	out := outcome(err)
	out[KeySize] = size
	if err == nil && buf != nil {
		out[KeyModel] = string(buf[:size-1])
	}
	return out, nil
}

func (r *Runner) handleVoltageSpec(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.specOutputs(step, state, r.registry.VoltageSpec)
}

func (r *Runner) handleCurrentSpec(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.specOutputs(step, state, r.registry.CurrentSpec)
}

func (r *Runner) specOutputs(step *loader.Step, state *engine.ExecutionState, get func(vdc.Handle) (vdc.ParamSpec, error)) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}

	spec, err := get(h)
	out := outcome(err)
	if err == nil {
		out[KeyMin] = spec.Min
		out[KeyMax] = spec.Max
		out[KeyResolution] = spec.Resolution
	}
	return out, nil
}
