package runner

import (
	"fmt"
	"sort"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

const benchStateKey = "bench"

// bench is the per-script state: PSU aliases and the loads and UUTs that
// connect_uut hands to the registry.
type bench struct {
	handles map[string]vdc.Handle
	loads   map[string]vdc.LoadModel

	// uuts keeps attached UUTs referenced for as long as they may be
	// attached, keyed by handle.
	uuts map[vdc.Handle]*vdc.UUT
}

func newBench(loads map[string]vdc.LoadModel) *bench {
	if loads == nil {
		loads = make(map[string]vdc.LoadModel)
	}
	return &bench{
		handles: make(map[string]vdc.Handle),
		loads:   loads,
		uuts:    make(map[vdc.Handle]*vdc.UUT),
	}
}

func installBench(state *engine.ExecutionState, b *bench) {
	state.Custom[benchStateKey] = b
}

func benchFrom(state *engine.ExecutionState) *bench {
	b, ok := state.Custom[benchStateKey].(*bench)
	if !ok {
		b = newBench(nil)
		installBench(state, b)
	}
	return b
}

func (b *bench) loadNames() []string {
	names := make([]string, 0, len(b.loads))
	for name := range b.loads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve returns the handle a step addresses. A raw "handle" parameter
// wins over the "psu" alias so scripts can address arbitrary handles,
// including ones the registry must reject.
// Aliases keep pointing at their handle after destroy.
func (b *bench) resolve(params map[string]any) (vdc.Handle, error) {
	if _, raw := params[ParamHandle]; raw {
		return paramHandle(params, ParamHandle)
	}

	alias := paramString(params, ParamPSU, DefaultPSU)
	h, ok := b.handles[alias]
	if !ok {
		return vdc.InvalidHandle, fmt.Errorf("unknown psu %q", alias)
	}
	return h, nil
}

// outcome builds the outputs every registry-backed step reports.
func outcome(err error) map[string]any {
	out := map[string]any{KeyResult: vdc.ResultOf(err).String()}
	if err != nil {
		out[KeyError] = err.Error()
	}
	return out
}
