package uut

import (
	"fmt"

	"github.com/vdcsim/vdc-go/pkg/vdc"
)

// Resistive is a fixed resistance.
type Resistive struct {
	Ohms float64
}

// Respond implements vdc.LoadModel.
func (r Resistive) Respond(p vdc.Supply, _ any) vdc.Supply {
	i := p.Voltage / r.Ohms
	if i <= p.Current {
		return vdc.Supply{Voltage: p.Voltage, Current: i}
	}
	// CC mode: the limit drives the resistance.
	return vdc.Supply{Voltage: p.Current * r.Ohms, Current: p.Current}
}

func (r Resistive) String() string {
	return fmt.Sprintf("resistive %g ohm", r.Ohms)
}

// ConstantCurrent sinks a fixed current regardless of voltage.
type ConstantCurrent struct {
	Amps float64
}

// Respond implements vdc.LoadModel. When the demand exceeds the limit the
// supply cannot hold its voltage and the output collapses to 0 V at the
// limit current.
func (c ConstantCurrent) Respond(p vdc.Supply, _ any) vdc.Supply {
	if p.Voltage == 0 {
		return vdc.Supply{}
	}
	if c.Amps <= p.Current {
		return vdc.Supply{Voltage: p.Voltage, Current: c.Amps}
	}
	return vdc.Supply{Voltage: 0, Current: p.Current}
}

func (c ConstantCurrent) String() string {
	return fmt.Sprintf("constant current %g A", c.Amps)
}

// ConstantPower draws a fixed power, like a switching regulator input.
type ConstantPower struct {
	Watts float64
}

// Respond implements vdc.LoadModel. Below the voltage at which the required
// current would exceed the limit the load folds the supply back to 0 V.
func (c ConstantPower) Respond(p vdc.Supply, _ any) vdc.Supply {
	if p.Voltage <= 0 {
		return vdc.Supply{}
	}
	i := c.Watts / p.Voltage
	if i <= p.Current {
		return vdc.Supply{Voltage: p.Voltage, Current: i}
	}
	return vdc.Supply{Voltage: 0, Current: p.Current}
}

func (c ConstantPower) String() string {
	return fmt.Sprintf("constant power %g W", c.Watts)
}

// Open is a disconnected lead: full voltage, no current.
type Open struct{}

// Respond implements vdc.LoadModel.
func (Open) Respond(p vdc.Supply, _ any) vdc.Supply {
	return vdc.Supply{Voltage: p.Voltage}
}

func (Open) String() string { return "open circuit" }

// Short is a dead short: the supply sits in CC at 0 V.
type Short struct{}

// Respond implements vdc.LoadModel.
func (Short) Respond(p vdc.Supply, _ any) vdc.Supply {
	if p.Voltage == 0 {
		return vdc.Supply{}
	}
	return vdc.Supply{Current: p.Current}
}

func (Short) String() string { return "short circuit" }

// Compile-time interface satisfaction checks.
var (
	_ vdc.LoadModel = Resistive{}
	_ vdc.LoadModel = ConstantCurrent{}
	_ vdc.LoadModel = ConstantPower{}
	_ vdc.LoadModel = Open{}
	_ vdc.LoadModel = Short{}
)
