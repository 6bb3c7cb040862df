// Package api defines the result codes and operation identifiers of the
// virtual DC power-supply handle API.
//
// The codes are shared by the registry (pkg/vdc), the bench event log
// (pkg/log) and bench scripts, so a recorded run can be replayed or
// filtered without importing the registry itself.
//
// # Result Codes
//
// Result values are stable integers so they survive CBOR encoding and
// line up with the C-style instrument drivers the simulator stands in for:
//
//	0 SUCCESS
//	1 INTERNAL_ERROR
//	2 MAX_HANDLES_EXCEEDED
//	3 INVALID_HANDLE
//	4 BUFFER_TOO_SMALL
//	5 INVALID_PARAMETER
//	6 NULL_PARAMETER
//	7 UUT_ALREADY_CONNECTED
package api
