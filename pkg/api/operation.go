package api

import (
	"fmt"
	"strings"
)

// Operation identifies a handle API call.
type Operation uint8

const (
	OpCreate Operation = iota + 1
	OpDestroy
	OpGetModel
	OpGetVoltageSpec
	OpGetCurrentSpec
	OpSetVoltage
	OpGetVoltage
	OpSetCurrent
	OpGetCurrent
	OpSetOutputState
	OpGetOutputState
	OpConnectUUT
	OpDisconnectUUT
	OpIsUUTConnected
	OpReadStatus
)

var operationNames = []string{
	OpCreate:         "create",
	OpDestroy:        "destroy",
	OpGetModel:       "get_model",
	OpGetVoltageSpec: "get_voltage_spec",
	OpGetCurrentSpec: "get_current_spec",
	OpSetVoltage:     "set_voltage",
	OpGetVoltage:     "get_voltage",
	OpSetCurrent:     "set_current",
	OpGetCurrent:     "get_current",
	OpSetOutputState: "set_output_state",
	OpGetOutputState: "get_output_state",
	OpConnectUUT:     "connect_uut",
	OpDisconnectUUT:  "disconnect_uut",
	OpIsUUTConnected: "is_uut_connected",
	OpReadStatus:     "read_status",
}

// String returns the operation name.
func (o Operation) String() string {
	if o.IsValid() {
		return operationNames[o]
	}
	return "unknown"
}

// IsValid returns true if the operation is a known API call.
func (o Operation) IsValid() bool {
	return o >= OpCreate && o <= OpReadStatus
}

// IsMutating returns true if the operation can change instance state.
func (o Operation) IsMutating() bool {
	switch o {
	case OpCreate, OpDestroy, OpSetVoltage, OpSetCurrent, OpSetOutputState,
		OpConnectUUT, OpDisconnectUUT:
		return true
	default:
		return false
	}
}

// ParseOperation converts an operation name to its Operation value.
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for o := OpCreate; o <= OpReadStatus; o++ {
		if operationNames[o] == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}
