package runner

import (
	"context"
	"fmt"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// registerLoadHandlers registers UUT attachment handlers.
func (r *Runner) registerLoadHandlers() {
	r.engine.RegisterHandler(ActionConnectUUT, r.handleConnectUUT)
	r.engine.RegisterHandler(ActionDisconnectUUT, r.handleDisconnectUUT)
	r.engine.RegisterHandler(ActionUUTConnected, r.handleUUTConnected)
}

// handleConnectUUT attaches the named load. Without a load parameter it
// passes a nil UUT, which the registry rejects as a null parameter.
func (r *Runner) handleConnectUUT(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	b := benchFrom(state)
	h, err := b.resolve(step.Params)
	if err != nil {
		return nil, err
	}

	var u *vdc.UUT
	if name := paramString(step.Params, ParamLoad, ""); name != "" {
		load, ok := b.loads[name]
		if !ok {
			return nil, fmt.Errorf("unknown load %q (have %v)", name, b.loadNames())
		}
		u = &vdc.UUT{Load: load, Context: step.Params[ParamContext]}
	}

	err = r.registry.ConnectUUT(h, u)
	if err == nil {
		b.uuts[h] = u
	}
	out := outcome(err)
	out[KeyConnected] = err == nil
	return out, nil
}

func (r *Runner) handleDisconnectUUT(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	b := benchFrom(state)
	h, err := b.resolve(step.Params)
	if err != nil {
		return nil, err
	}

	err = r.registry.DisconnectUUT(h)
	if err == nil {
		delete(b.uuts, h)
	}
	return outcome(err), nil
}

func (r *Runner) handleUUTConnected(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	h, err := benchFrom(state).resolve(step.Params)
	if err != nil {
		return nil, err
	}
	connected, err := r.registry.IsUUTConnected(h)
	out := outcome(err)
	if err == nil {
		out[KeyConnected] = connected
	}
	return out, nil
}
