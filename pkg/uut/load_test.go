package uut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vdcsim/vdc-go/pkg/vdc"
)

func TestResistive(t *testing.T) {
	r := Resistive{Ohms: 10}

	tests := []struct {
		name     string
		proposed vdc.Supply
		want     vdc.Supply
	}{
		{"CV", vdc.Supply{Voltage: 5, Current: 2}, vdc.Supply{Voltage: 5, Current: 0.5}},
		{"at crossover", vdc.Supply{Voltage: 10, Current: 1}, vdc.Supply{Voltage: 10, Current: 1}},
		{"CC", vdc.Supply{Voltage: 20, Current: 1}, vdc.Supply{Voltage: 10, Current: 1}},
		{"zero limit", vdc.Supply{Voltage: 12, Current: 0}, vdc.Supply{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Respond(tt.proposed, nil)
			assert.InDelta(t, tt.want.Voltage, got.Voltage, 1e-12)
			assert.InDelta(t, tt.want.Current, got.Current, 1e-12)
		})
	}
}

func TestConstantCurrent(t *testing.T) {
	c := ConstantCurrent{Amps: 1.5}
	assert.Equal(t, vdc.Supply{Voltage: 12, Current: 1.5}, c.Respond(vdc.Supply{Voltage: 12, Current: 2}, nil))
	assert.Equal(t, vdc.Supply{Voltage: 0, Current: 1}, c.Respond(vdc.Supply{Voltage: 12, Current: 1}, nil))
	assert.Equal(t, vdc.Supply{}, c.Respond(vdc.Supply{Voltage: 0, Current: 2}, nil))
}

func TestConstantPower(t *testing.T) {
	c := ConstantPower{Watts: 10}
	got := c.Respond(vdc.Supply{Voltage: 20, Current: 5}, nil)
	assert.Equal(t, 20.0, got.Voltage)
	assert.InDelta(t, 0.5, got.Current, 1e-12)

	assert.Equal(t, vdc.Supply{Voltage: 0, Current: 1}, c.Respond(vdc.Supply{Voltage: 5, Current: 1}, nil))
	assert.Equal(t, vdc.Supply{}, c.Respond(vdc.Supply{Voltage: 0, Current: 1}, nil))
}

func TestOpenAndShort(t *testing.T) {
	p := vdc.Supply{Voltage: 9, Current: 3}
	assert.Equal(t, vdc.Supply{Voltage: 9}, Open{}.Respond(p, nil))
	assert.Equal(t, vdc.Supply{Current: 3}, Short{}.Respond(p, nil))
	assert.Equal(t, vdc.Supply{}, Short{}.Respond(vdc.Supply{Current: 3}, nil))
}

func TestLoadThroughRegistry(t *testing.T) {
	r := vdc.New()
	h, err := r.Create()
	require.NoError(t, err)

	require.NoError(t, r.SetVoltage(h, 24))
	require.NoError(t, r.SetCurrent(h, 1))
	require.NoError(t, r.SetOutputState(h, true))
	require.NoError(t, r.ConnectUUT(h, &vdc.UUT{Load: Resistive{Ohms: 12}}))

	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.InDelta(t, 12, st.Voltage, 1e-12)
	assert.InDelta(t, 1, st.Current, 1e-12)
	assert.InDelta(t, 12, st.Power, 1e-12)
}

func TestString(t *testing.T) {
	assert.Equal(t, "resistive 10 ohm", Resistive{Ohms: 10}.String())
	assert.Equal(t, "constant current 1.5 A", ConstantCurrent{Amps: 1.5}.String())
	assert.Equal(t, "constant power 60 W", ConstantPower{Watts: 60}.String())
	assert.Equal(t, "open circuit", Open{}.String())
	assert.Equal(t, "short circuit", Short{}.String())
}
