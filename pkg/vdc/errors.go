package vdc

import (
	"errors"

	"github.com/vdcsim/vdc-go/pkg/api"
)

// Registry errors. Each maps to one api.Result code.
var (
	ErrMaxHandlesExceeded  = errors.New("maximum number of handles exceeded")
	ErrInvalidHandle       = errors.New("invalid handle")
	ErrBufferTooSmall      = errors.New("buffer too small")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrNullParameter       = errors.New("null parameter")
	ErrUUTAlreadyConnected = errors.New("UUT already connected")
)

// ErrInvalidProfile is returned by ModelProfile.Validate.
var ErrInvalidProfile = errors.New("invalid model profile")

var resultErrors = []struct {
	err    error
	result api.Result
}{
	{ErrMaxHandlesExceeded, api.ResultMaxHandles},
	{ErrInvalidHandle, api.ResultInvalidHandle},
	{ErrBufferTooSmall, api.ResultBufferTooSmall},
	{ErrInvalidParameter, api.ResultInvalidParameter},
	{ErrNullParameter, api.ResultNullParameter},
	{ErrUUTAlreadyConnected, api.ResultUUTAlreadyConnected},
}

// ResultOf maps an error returned by a Registry method to its result code.
// A nil error is ResultSuccess. Errors not originating from this package
// map to ResultInternal.
func ResultOf(err error) api.Result {
	if err == nil {
		return api.ResultSuccess
	}
	for _, re := range resultErrors {
		if errors.Is(err, re.err) {
			return re.result
		}
	}
	return api.ResultInternal
}

// ErrorFor returns the sentinel error for a result code, or nil for
// ResultSuccess and codes without a sentinel.
func ErrorFor(r api.Result) error {
	for _, re := range resultErrors {
		if re.result == r {
			return re.err
		}
	}
	return nil
}
