package runner

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// paramString extracts a string parameter, or defaultVal when absent.
func paramString(params map[string]any, key, defaultVal string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// paramFloat extracts a required float64 parameter. Numbers of any YAML
// type are accepted, as are the strings "nan", "inf" and "-inf".
func paramFloat(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", key)
	}
	if f, ok := engine.ToFloat64(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("parameter %q is not a number: %v", key, v)
}

// paramInt extracts an integer parameter, or defaultVal when absent.
func paramInt(params map[string]any, key string, defaultVal int) (int, error) {
	v, ok := params[key]
	if !ok {
		return defaultVal, nil
	}
	f, ok := engine.ToFloat64(v)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("parameter %q is not an integer: %v", key, v)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("parameter %q is out of range: %v", key, v)
	}
	return int(f), nil
}

// paramHandle extracts a raw handle parameter. Integers outside the
// uint32 range map to vdc.InvalidHandle so the registry rejects them
// rather than seeing a truncated value.
func paramHandle(params map[string]any, key string) (vdc.Handle, error) {
	f, ok := engine.ToFloat64(params[key])
	if !ok || f != math.Trunc(f) {
		return vdc.InvalidHandle, fmt.Errorf("parameter %q is not an integer: %v", key, params[key])
	}
	if f < 0 || f > math.MaxUint32 {
		return vdc.InvalidHandle, nil
	}
	return vdc.Handle(f), nil
}

// paramBool extracts a required boolean parameter. "on"/"off" are accepted
// alongside YAML booleans.
func paramBool(params map[string]any, key string) (bool, error) {
	v, ok := params[key]
	if !ok {
		return false, fmt.Errorf("missing parameter %q", key)
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "on", "true", "1":
			return true, nil
		case "off", "false", "0":
			return false, nil
		}
	case int:
		return b != 0, nil
	}
	return false, fmt.Errorf("parameter %q is not a boolean: %v", key, v)
}
