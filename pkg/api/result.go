package api

import (
	"fmt"
	"strings"
)

// Result is the outcome code of a handle API call.
type Result int32

const (
	// ResultSuccess indicates the call completed and applied its effect.
	ResultSuccess Result = 0

	// ResultInternal marks an unreachable path. No registry operation
	// returns it; it is kept so decoded logs from other drivers still map.
	ResultInternal Result = 1

	// ResultMaxHandles indicates every slot of the pool is in use.
	ResultMaxHandles Result = 2

	// ResultInvalidHandle indicates the handle does not address a live instance.
	ResultInvalidHandle Result = 3

	// ResultBufferTooSmall indicates the caller buffer cannot hold the value.
	ResultBufferTooSmall Result = 4

	// ResultInvalidParameter indicates a value outside the instance limits.
	ResultInvalidParameter Result = 5

	// ResultNullParameter indicates a required argument was absent.
	ResultNullParameter Result = 6

	// ResultUUTAlreadyConnected indicates a load model is already attached.
	ResultUUTAlreadyConnected Result = 7
)

var resultNames = map[Result]string{
	ResultSuccess:             "SUCCESS",
	ResultInternal:            "INTERNAL_ERROR",
	ResultMaxHandles:          "MAX_HANDLES_EXCEEDED",
	ResultInvalidHandle:       "INVALID_HANDLE",
	ResultBufferTooSmall:      "BUFFER_TOO_SMALL",
	ResultInvalidParameter:    "INVALID_PARAMETER",
	ResultNullParameter:       "NULL_PARAMETER",
	ResultUUTAlreadyConnected: "UUT_ALREADY_CONNECTED",
}

// String returns the result name.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsSuccess returns true if the result indicates success.
func (r Result) IsSuccess() bool {
	return r == ResultSuccess
}

// IsError returns true if the result indicates an error.
func (r Result) IsError() bool {
	return r != ResultSuccess
}

// ParseResult converts a result name (case-insensitive, "-" or "_"
// separated) to its Result value.
func ParseResult(s string) (Result, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for r, n := range resultNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown result %q", s)
}
