package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/vdcsim/vdc-go/pkg/api"
)

// ToFloat64 converts numeric values decoded from YAML or produced by
// handlers to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

func missing(key, outKey string, expected any) *ExpectResult {
	return &ExpectResult{
		Key:      key,
		Expected: expected,
		Passed:   false,
		Message:  fmt.Sprintf("output key %q not found", outKey),
	}
}

// defaultChecker compares the output named key with expected. Numbers are
// compared by value regardless of their Go type; everything else by its
// printed form. "present" only requires the key to exist.
func defaultChecker(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(key)
	if !exists {
		return missing(key, key, expected)
	}

	result := &ExpectResult{Key: key, Expected: expected, Actual: actual}

	if s, ok := expected.(string); ok && s == "present" {
		result.Passed = true
		result.Message = fmt.Sprintf("%s = %v", key, actual)
		return result
	}

	if en, ok := ToFloat64(expected); ok {
		if an, ok := ToFloat64(actual); ok {
			result.Passed = en == an
		}
	} else {
		result.Passed = fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}

	if result.Passed {
		result.Message = fmt.Sprintf("%s = %v", key, expected)
	} else {
		result.Message = fmt.Sprintf("expected %v, got %v", expected, actual)
	}
	return result
}

// resultChecker compares result names case-insensitively.
func resultChecker(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(KeyResult)
	if !exists {
		return missing(key, KeyResult, expected)
	}

	result := &ExpectResult{Key: key, Expected: expected, Actual: actual}

	want, err := api.ParseResult(fmt.Sprintf("%v", expected))
	if err != nil {
		result.Message = err.Error()
		return result
	}
	got, err := api.ParseResult(fmt.Sprintf("%v", actual))
	if err != nil {
		result.Message = fmt.Sprintf("handler reported %v", err)
		return result
	}

	result.Passed = want == got
	if result.Passed {
		result.Message = fmt.Sprintf("result = %s", got)
	} else {
		result.Message = fmt.Sprintf("expected %s, got %s", want, got)
	}
	return result
}

// approxChecker compares output key minus SuffixApprox numerically. The
// expectation is a number (state tolerance applies) or a map with "value"
// and "tolerance".
func approxChecker(key string, expected any, state *ExecutionState) *ExpectResult {
	outKey := strings.TrimSuffix(key, SuffixApprox)
	actual, exists := state.Get(outKey)
	if !exists {
		return missing(key, outKey, expected)
	}

	result := &ExpectResult{Key: key, Expected: expected, Actual: actual}

	want, tol, err := approxTarget(expected, state.Tolerance)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	got, ok := ToFloat64(actual)
	if !ok {
		result.Message = fmt.Sprintf("output %s is %T, not a number", outKey, actual)
		return result
	}

	diff := math.Abs(got - want)
	result.Passed = diff <= tol
	if result.Passed {
		result.Message = fmt.Sprintf("%s = %g (within %g of %g)", outKey, got, tol, want)
	} else {
		result.Message = fmt.Sprintf("expected %g ± %g, got %g", want, tol, got)
	}
	return result
}

func approxTarget(expected any, defaultTol float64) (value, tol float64, err error) {
	if v, ok := ToFloat64(expected); ok {
		return v, defaultTol, nil
	}
	m, ok := expected.(map[string]any)
	if !ok {
		return 0, 0, fmt.Errorf("approx expectation must be a number or {value, tolerance}, got %T", expected)
	}
	value, ok = ToFloat64(m["value"])
	if !ok {
		return 0, 0, fmt.Errorf("approx expectation needs a numeric value")
	}
	tol = defaultTol
	if raw, present := m["tolerance"]; present {
		if tol, ok = ToFloat64(raw); !ok || tol < 0 {
			return 0, 0, fmt.Errorf("approx tolerance must be a non-negative number")
		}
	}
	return value, tol, nil
}
