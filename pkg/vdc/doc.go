// Package vdc implements a bank of virtual DC power supplies addressed by
// opaque integer handles.
//
// A Registry owns a fixed pool of MaxHandles instrument slots. Each created
// instance carries immutable electrical limits taken from a ModelProfile,
// voltage and current setpoints validated against those limits, an output
// enable flag, and an optional attached UUT (unit under test) whose load
// model decides what the supply actually delivers.
//
// # Basic Usage
//
//	reg := vdc.New()
//
//	h, err := reg.Create()
//	if err != nil {
//	    return err
//	}
//	defer reg.Destroy(h)
//
//	_ = reg.SetVoltage(h, 5)
//	_ = reg.SetCurrent(h, 2)
//	_ = reg.SetOutputState(h, true)
//
//	load := &vdc.UUT{Load: uut.NewResistive(10)}
//	_ = reg.ConnectUUT(h, load)
//
//	st, _ := reg.ReadStatus(h)
//	fmt.Printf("%.2f V %.3f A %.2f W\n", st.Voltage, st.Current, st.Power)
//
// # Handles
//
// A handle is the slot index plus one, so the zero value (InvalidHandle)
// never addresses a slot. Slots are reused first-fit from the lowest index,
// which keeps handle assignment reproducible across test runs. A destroyed
// handle is rejected with ErrInvalidHandle until a later Create hands the
// same slot out again.
//
// # Status
//
// ReadStatus reports delivered values, not setpoints:
//
//   - output off: 0 V, 0 A, 0 W
//   - output on, no UUT: setpoint voltage, 0 A, 0 W
//   - output on, UUT attached: whatever the load model returns, P = V × I
//
// The load model output is reported as-is, without clamping to the
// instance limits.
//
// # Errors
//
// Every failure is one of the sentinel errors of this package, wrapped
// with context. Use errors.Is to test for a condition, or ResultOf to
// obtain the api.Result code.
package vdc
