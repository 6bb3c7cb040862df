// Package log provides structured bench event capture for the virtual
// DC power-supply registry.
//
// Every registry call is reported as an Event carrying the operation, the
// handle, the result code and, where relevant, the setpoint written or the
// status read back. This is separate from operational logging (slog):
// event capture produces a complete machine-readable trace of a bench run
// that can be replayed, filtered and summarized after the fact.
//
// # Basic Usage
//
// Pass a Logger implementation to the registry:
//
//	// During development: print events via slog
//	reg := vdc.New(vdc.WithEventLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For later analysis: append to a binary file
//	fl, _ := log.NewFileLogger("bench.vlog")
//	reg := vdc.New(vdc.WithEventLogger(fl))
//
//	// Both
//	reg := vdc.New(vdc.WithEventLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fl,
//	)))
//
// # Event Categories
//
//   - Lifecycle: create and destroy
//   - Control: setpoint and output writes
//   - Measurement: setpoint, spec, model and status reads
//   - Load: UUT attach, detach and query
//   - Error: any call that returned a non-success result
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, by
// convention using the .vlog extension. The vdc-log CLI views, filters,
// exports and summarizes them.
package log
