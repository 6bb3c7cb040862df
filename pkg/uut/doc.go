// Package uut provides ready-made load models for units under test.
//
// Each model implements vdc.LoadModel and behaves like a simple load on a
// real bench supply: the supply regulates voltage (CV) until the load asks
// for more current than the current limit, at which point it regulates
// current (CC) and the voltage drops to whatever the load allows.
//
// Loads can be built directly or described in YAML and built with New:
//
//	loads:
//	  dut:     {type: resistive, ohms: 10}
//	  charger: {type: constant_current, amps: 1.5}
package uut
