package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/vdcsim/vdc-go/pkg/api"
)

// Event represents one registry call captured during a bench run.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the call completed (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the registry that emitted the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Handle addressed by the call (0 for a failed create).
	Handle uint32 `cbor:"3,keyasint,omitempty"`

	// Operation is the API call.
	Operation api.Operation `cbor:"4,keyasint"`

	// Result is the outcome code. Not omitted: SUCCESS encodes as 0.
	Result api.Result `cbor:"5,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"6,keyasint"`

	// Model is the instance model name (populated on create).
	Model string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Setpoint *SetpointEvent  `cbor:"10,keyasint,omitempty"` // Setpoint or output write/read
	Status   *StatusEvent    `cbor:"11,keyasint,omitempty"` // Status read
	Load     *LoadEvent      `cbor:"12,keyasint,omitempty"` // UUT attach/detach
	Error    *ErrorEventData `cbor:"13,keyasint,omitempty"` // Failed call
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle indicates an instance was created or destroyed.
	CategoryLifecycle Category = 0
	// CategoryControl indicates a setpoint or output state write.
	CategoryControl Category = 1
	// CategoryMeasurement indicates a read of setpoints, limits or status.
	CategoryMeasurement Category = 2
	// CategoryLoad indicates a UUT attach, detach or query.
	CategoryLoad Category = 3
	// CategoryError indicates the call failed.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryControl:
		return "CONTROL"
	case CategoryMeasurement:
		return "MEASUREMENT"
	case CategoryLoad:
		return "LOAD"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory converts a category name (case-insensitive) to its value.
func ParseCategory(s string) (Category, error) {
	for c := CategoryLifecycle; c <= CategoryError; c++ {
		if strings.EqualFold(c.String(), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// CategoryFor returns the category an operation is filed under when it
// succeeds.
func CategoryFor(op api.Operation) Category {
	switch op {
	case api.OpCreate, api.OpDestroy:
		return CategoryLifecycle
	case api.OpSetVoltage, api.OpSetCurrent, api.OpSetOutputState:
		return CategoryControl
	case api.OpConnectUUT, api.OpDisconnectUUT, api.OpIsUUTConnected:
		return CategoryLoad
	default:
		return CategoryMeasurement
	}
}

// Quantity identifies which setpoint a SetpointEvent refers to.
type Quantity uint8

const (
	// QuantityVoltage is the voltage setpoint in volts.
	QuantityVoltage Quantity = 0
	// QuantityCurrent is the current setpoint in amperes.
	QuantityCurrent Quantity = 1
	// QuantityOutput is the output enable flag (Value 1 = on, 0 = off).
	QuantityOutput Quantity = 2
)

// String returns the quantity name.
func (q Quantity) String() string {
	switch q {
	case QuantityVoltage:
		return "VOLTAGE"
	case QuantityCurrent:
		return "CURRENT"
	case QuantityOutput:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// Unit returns the SI unit symbol of the quantity.
func (q Quantity) Unit() string {
	switch q {
	case QuantityVoltage:
		return "V"
	case QuantityCurrent:
		return "A"
	default:
		return ""
	}
}

// SetpointEvent captures a setpoint or output state value.
type SetpointEvent struct {
	// Quantity that was written or read.
	Quantity Quantity `cbor:"1,keyasint"`

	// Value written or read back.
	Value float64 `cbor:"2,keyasint"`
}

// StatusEvent captures a computed output status.
type StatusEvent struct {
	OutputState bool    `cbor:"1,keyasint"`
	Voltage     float64 `cbor:"2,keyasint"`
	Current     float64 `cbor:"3,keyasint"`
	Power       float64 `cbor:"4,keyasint"`

	// Loaded indicates the values came from an attached UUT.
	Loaded bool `cbor:"5,keyasint,omitempty"`
}

// LoadEvent captures UUT attachment state.
type LoadEvent struct {
	// Connected is the attachment state after the call.
	Connected bool `cbor:"1,keyasint"`

	// Description of the load model, if it provides one.
	Description string `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures why a call failed.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes the rejected argument, if any.
	Context string `cbor:"2,keyasint,omitempty"`
}
