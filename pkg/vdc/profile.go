package vdc

import (
	"fmt"
	"math"
)

// MaxModelLength is the size of a model name buffer, terminator included.
// Names must be strictly shorter.
const MaxModelLength = 32

// ParamSpec describes the programmable range of one quantity.
type ParamSpec struct {
	// Min is the lowest accepted setpoint (inclusive).
	Min float64 `yaml:"min" json:"min"`

	// Max is the highest accepted setpoint (inclusive).
	Max float64 `yaml:"max" json:"max"`

	// Resolution is the programming step size. Informational only;
	// setpoints are not rounded to it.
	Resolution float64 `yaml:"resolution" json:"resolution"`
}

// Contains reports whether v lies in [Min, Max]. NaN is never contained.
func (s ParamSpec) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

func (s ParamSpec) validate(name string) error {
	if math.IsNaN(s.Min) || math.IsNaN(s.Max) || math.IsInf(s.Min, 0) || math.IsInf(s.Max, 0) {
		return fmt.Errorf("%w: %s range must be finite", ErrInvalidProfile, name)
	}
	if s.Min > s.Max {
		return fmt.Errorf("%w: %s min %g > max %g", ErrInvalidProfile, name, s.Min, s.Max)
	}
	if s.Resolution < 0 || math.IsNaN(s.Resolution) {
		return fmt.Errorf("%w: %s resolution %g is negative", ErrInvalidProfile, name, s.Resolution)
	}
	return nil
}

// ModelProfile is the fixed set of limits and display name assigned to
// every instance a Registry creates.
type ModelProfile struct {
	Name    string    `yaml:"name" json:"name"`
	Voltage ParamSpec `yaml:"voltage" json:"voltage"`
	Current ParamSpec `yaml:"current" json:"current"`
}

// DefaultProfile is the built-in model: a single-channel 30 V / 5 A bench supply.
var DefaultProfile = ModelProfile{
	Name:    "VDC-3005 Virtual DC Supply",
	Voltage: ParamSpec{Min: 0, Max: 30, Resolution: 0.01},
	Current: ParamSpec{Min: 0, Max: 5, Resolution: 0.001},
}

// Validate checks that the profile can back an instance.
func (p ModelProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProfile)
	}
	if len(p.Name) >= MaxModelLength {
		return fmt.Errorf("%w: name %q is %d bytes, limit is %d",
			ErrInvalidProfile, p.Name, len(p.Name), MaxModelLength-1)
	}
	if err := p.Voltage.validate("voltage"); err != nil {
		return err
	}
	return p.Current.validate("current")
}
