package uut

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// Load type names accepted in Spec.Type.
const (
	TypeResistive       = "resistive"
	TypeConstantCurrent = "constant_current"
	TypeConstantPower   = "constant_power"
	TypeOpen            = "open"
	TypeShort           = "short"
)

var (
	// ErrUnknownType is returned by New for an unrecognized Spec.Type.
	ErrUnknownType = errors.New("unknown load type")

	// ErrInvalidLoad is returned by New when a load parameter is out of range.
	ErrInvalidLoad = errors.New("invalid load parameter")
)

// Spec describes a load model in configuration files.
type Spec struct {
	Type  string  `yaml:"type" json:"type"`
	Ohms  float64 `yaml:"ohms,omitempty" json:"ohms,omitempty"`
	Amps  float64 `yaml:"amps,omitempty" json:"amps,omitempty"`
	Watts float64 `yaml:"watts,omitempty" json:"watts,omitempty"`
}

// New builds the load model described by s.
func New(s Spec) (vdc.LoadModel, error) {
	switch strings.ToLower(strings.ReplaceAll(s.Type, "-", "_")) {
	case TypeResistive:
		if !positive(s.Ohms) {
			return nil, fmt.Errorf("%w: ohms must be > 0, got %g", ErrInvalidLoad, s.Ohms)
		}
		return Resistive{Ohms: s.Ohms}, nil
	case TypeConstantCurrent, "cc":
		if !nonNegative(s.Amps) {
			return nil, fmt.Errorf("%w: amps must be >= 0, got %g", ErrInvalidLoad, s.Amps)
		}
		return ConstantCurrent{Amps: s.Amps}, nil
	case TypeConstantPower, "cp":
		if !nonNegative(s.Watts) {
			return nil, fmt.Errorf("%w: watts must be >= 0, got %g", ErrInvalidLoad, s.Watts)
		}
		return ConstantPower{Watts: s.Watts}, nil
	case TypeOpen:
		return Open{}, nil
	case TypeShort:
		return Short{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownType, s.Type, strings.Join(Types(), ", "))
	}
}

// BuildAll builds every named spec. Errors name the offending entry.
func BuildAll(specs map[string]Spec) (map[string]vdc.LoadModel, error) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]vdc.LoadModel, len(specs))
	for _, name := range names {
		m, err := New(specs[name])
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", name, err)
		}
		out[name] = m
	}
	return out, nil
}

// Types returns the accepted type names.
func Types() []string {
	return []string{TypeResistive, TypeConstantCurrent, TypeConstantPower, TypeOpen, TypeShort}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
