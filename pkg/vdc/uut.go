package vdc

// Supply is a voltage/current pair. Passed to a load model it is the
// proposed supply (voltage setpoint and current limit); returned from it,
// the values actually delivered.
type Supply struct {
	Voltage float64
	Current float64
}

// LoadModel computes what a supply delivers into a unit under test.
//
// Respond receives the instance setpoints and the opaque context stored in
// the UUT, and returns the delivered voltage and current. It is called
// synchronously from ReadStatus while the registry holds its read lock, so
// it must return promptly and must not call back into the same Registry.
type LoadModel interface {
	Respond(proposed Supply, ctx any) Supply
}

// LoadModelFunc adapts a plain function to LoadModel.
type LoadModelFunc func(proposed Supply, ctx any) Supply

// Respond calls f(proposed, ctx).
func (f LoadModelFunc) Respond(proposed Supply, ctx any) Supply {
	return f(proposed, ctx)
}

// UUT describes a unit under test attached to an instance.
//
// The registry keeps only the pointer while attached. It never copies,
// mutates or releases the UUT; the caller owns it and must keep it valid
// until DisconnectUUT or Destroy.
type UUT struct {
	// Load computes the delivered supply. Required.
	Load LoadModel

	// Context is passed through to Load unchanged.
	Context any
}

// Compile-time interface satisfaction check.
var _ LoadModel = LoadModelFunc(nil)
