package vdc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

// ---------------------------------------------------------------------------
// stubLoad
// ---------------------------------------------------------------------------

type stubLoad struct{ mock.Mock }

func (s *stubLoad) Respond(proposed Supply, ctx any) Supply {
	return s.Called(proposed, ctx).Get(0).(Supply)
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	return New(opts...)
}

func mustCreate(t *testing.T, r *Registry) Handle {
	t.Helper()
	h, err := r.Create()
	require.NoError(t, err)
	require.NotEqual(t, InvalidHandle, h)
	return h
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestCreateUpToCapacity(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, MaxHandles, r.Capacity())

	seen := make(map[Handle]bool)
	for i := 0; i < MaxHandles; i++ {
		h, err := r.Create()
		require.NoError(t, err)
		assert.Equal(t, Handle(i+1), h, "first-fit assigns handles in slot order")
		assert.False(t, seen[h], "handle %d returned twice", h)
		seen[h] = true
	}
	assert.Equal(t, MaxHandles, r.Len())

	h, err := r.Create()
	assert.ErrorIs(t, err, ErrMaxHandlesExceeded)
	assert.Equal(t, InvalidHandle, h)
	assert.Equal(t, api.ResultMaxHandles, ResultOf(err))
}

func TestCreateInitializesFromProfile(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	v, err := r.Voltage(h)
	require.NoError(t, err)
	assert.Zero(t, v)

	c, err := r.Current(h)
	require.NoError(t, err)
	assert.Zero(t, c)

	on, err := r.OutputState(h)
	require.NoError(t, err)
	assert.False(t, on)

	connected, err := r.IsUUTConnected(h)
	require.NoError(t, err)
	assert.False(t, connected)

	model, err := r.Model(h)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile.Name, model)
}

func TestDestroyInvalidatesHandle(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)
	require.NoError(t, r.Destroy(h))

	calls := map[string]func() error{
		"Destroy":        func() error { return r.Destroy(h) },
		"Model":          func() error { _, err := r.Model(h); return err },
		"ReadModel":      func() error { _, err := r.ReadModel(h, nil); return err },
		"VoltageSpec":    func() error { _, err := r.VoltageSpec(h); return err },
		"CurrentSpec":    func() error { _, err := r.CurrentSpec(h); return err },
		"SetVoltage":     func() error { return r.SetVoltage(h, 1) },
		"SetCurrent":     func() error { return r.SetCurrent(h, 1) },
		"Voltage":        func() error { _, err := r.Voltage(h); return err },
		"Current":        func() error { _, err := r.Current(h); return err },
		"SetOutputState": func() error { return r.SetOutputState(h, true) },
		"OutputState":    func() error { _, err := r.OutputState(h); return err },
		"ConnectUUT":     func() error { return r.ConnectUUT(h, &UUT{Load: &stubLoad{}}) },
		"DisconnectUUT":  func() error { return r.DisconnectUUT(h) },
		"IsUUTConnected": func() error { _, err := r.IsUUTConnected(h); return err },
		"ReadStatus":     func() error { _, err := r.ReadStatus(h); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.ErrorIs(t, err, ErrInvalidHandle)
			assert.Equal(t, api.ResultInvalidHandle, ResultOf(err))
		})
	}
}

func TestOutOfRangeHandles(t *testing.T) {
	r := newTestRegistry(t)
	mustCreate(t, r)

	for _, h := range []Handle{InvalidHandle, MaxHandles + 1, math.MaxUint32} {
		assert.ErrorIs(t, r.Destroy(h), ErrInvalidHandle, "handle %d", h)
		_, err := r.ReadStatus(h)
		assert.ErrorIs(t, err, ErrInvalidHandle, "handle %d", h)
	}

	// Never-created slot within range.
	assert.ErrorIs(t, r.SetVoltage(5, 1), ErrInvalidHandle)
}

func TestSlotReuseDoesNotAlias(t *testing.T) {
	r := newTestRegistry(t)
	h1 := mustCreate(t, r)
	h2 := mustCreate(t, r)
	h3 := mustCreate(t, r)

	require.NoError(t, r.SetVoltage(h3, 12))
	require.NoError(t, r.Destroy(h2))

	h4 := mustCreate(t, r)
	assert.Equal(t, h2, h4, "lowest free slot is reused")
	assert.NotEqual(t, h1, h4)
	assert.NotEqual(t, h3, h4)
	assert.Equal(t, []Handle{h1, h4, h3}, r.Handles())

	// Reused slot starts fresh and does not share state with neighbours.
	v, err := r.Voltage(h4)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = r.Voltage(h3)
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)
}

func TestRecreateClearsPreviousState(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	load := &stubLoad{}
	require.NoError(t, r.SetVoltage(h, 9))
	require.NoError(t, r.SetOutputState(h, true))
	require.NoError(t, r.ConnectUUT(h, &UUT{Load: load}))
	require.NoError(t, r.Destroy(h))

	h2 := mustCreate(t, r)
	require.Equal(t, h, h2)

	connected, err := r.IsUUTConnected(h2)
	require.NoError(t, err)
	assert.False(t, connected)

	st, err := r.ReadStatus(h2)
	require.NoError(t, err)
	assert.Equal(t, Status{}, st)

	load.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestReset(t *testing.T) {
	r := newTestRegistry(t)
	for i := 0; i < 4; i++ {
		mustCreate(t, r)
	}
	r.Reset()

	assert.Zero(t, r.Len())
	assert.Empty(t, r.Handles())
	assert.Equal(t, Handle(1), mustCreate(t, r))
}

// ---------------------------------------------------------------------------
// Model name
// ---------------------------------------------------------------------------

func TestReadModelSizeQuery(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	n, err := r.ReadModel(h, nil)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultProfile.Name)+1, n)
}

func TestReadModelBufferTooSmall(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	required, err := r.ReadModel(h, nil)
	require.NoError(t, err)

	buf := make([]byte, required-1)
	for i := range buf {
		buf[i] = 'x'
	}
	n, err := r.ReadModel(h, buf)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, api.ResultBufferTooSmall, ResultOf(err))
	assert.Equal(t, required, n, "required size is reported on failure")
	for _, b := range buf {
		assert.Equal(t, byte('x'), b, "buffer must not be partially written")
	}
}

func TestReadModelCopiesTerminatedName(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	buf := make([]byte, MaxModelLength)
	n, err := r.ReadModel(h, buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile.Name, string(buf[:n-1]))
	assert.Zero(t, buf[n-1])

	// Exact fit.
	exact := make([]byte, n)
	_, err = r.ReadModel(h, exact)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile.Name+"\x00", string(exact))
}

// ---------------------------------------------------------------------------
// Specs and setpoints
// ---------------------------------------------------------------------------

func TestSpecs(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	vs, err := r.VoltageSpec(h)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile.Voltage, vs)

	// CurrentSpec reports success like VoltageSpec.
	cs, err := r.CurrentSpec(h)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile.Current, cs)
}

func TestSetVoltageRange(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)
	spec := DefaultProfile.Voltage

	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"min", spec.Min, false},
		{"max", spec.Max, false},
		{"mid", (spec.Min + spec.Max) / 2, false},
		{"below min", math.Nextafter(spec.Min, math.Inf(-1)), true},
		{"above max", math.Nextafter(spec.Max, math.Inf(1)), true},
		{"negative", -1, true},
		{"NaN", math.NaN(), true},
		{"+Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, r.SetVoltage(h, 1.25))

			err := r.SetVoltage(h, tt.value)
			got, rerr := r.Voltage(h)
			require.NoError(t, rerr)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
				assert.Equal(t, api.ResultInvalidParameter, ResultOf(err))
				assert.Equal(t, 1.25, got, "rejected write must not mutate")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestSetCurrentRange(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)
	spec := DefaultProfile.Current

	require.NoError(t, r.SetCurrent(h, spec.Min))
	require.NoError(t, r.SetCurrent(h, spec.Max))

	err := r.SetCurrent(h, spec.Max+0.001)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	c, err := r.Current(h)
	require.NoError(t, err)
	assert.Equal(t, spec.Max, c)
}

func TestSetpointDoesNotRequireOutput(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	require.NoError(t, r.SetVoltage(h, 3.3))
	on, err := r.OutputState(h)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestCustomProfile(t *testing.T) {
	p := ModelProfile{
		Name:    "HV-600",
		Voltage: ParamSpec{Min: 10, Max: 600, Resolution: 0.1},
		Current: ParamSpec{Min: 0.01, Max: 1.5},
	}
	r := newTestRegistry(t, WithProfile(p))
	h := mustCreate(t, r)

	assert.ErrorIs(t, r.SetVoltage(h, 5), ErrInvalidParameter)
	assert.NoError(t, r.SetVoltage(h, 600))

	model, err := r.Model(h)
	require.NoError(t, err)
	assert.Equal(t, "HV-600", model)
	assert.Equal(t, p, r.Profile())
}

// ---------------------------------------------------------------------------
// UUT attachment
// ---------------------------------------------------------------------------

func TestConnectUUTTwice(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	require.NoError(t, r.ConnectUUT(h, &UUT{Load: &stubLoad{}}))

	err := r.ConnectUUT(h, &UUT{Load: &stubLoad{}})
	assert.ErrorIs(t, err, ErrUUTAlreadyConnected)
	assert.Equal(t, api.ResultUUTAlreadyConnected, ResultOf(err))

	require.NoError(t, r.DisconnectUUT(h))
	assert.NoError(t, r.ConnectUUT(h, &UUT{Load: &stubLoad{}}))
}

func TestConnectUUTNull(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	err := r.ConnectUUT(h, nil)
	assert.ErrorIs(t, err, ErrNullParameter)
	assert.Equal(t, api.ResultNullParameter, ResultOf(err))

	assert.ErrorIs(t, r.ConnectUUT(h, &UUT{}), ErrNullParameter)

	connected, err := r.IsUUTConnected(h)
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestConnectUUTChecksHandleFirst(t *testing.T) {
	r := newTestRegistry(t)
	assert.ErrorIs(t, r.ConnectUUT(1, nil), ErrInvalidHandle)
}

func TestDisconnectUUTIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	assert.NoError(t, r.DisconnectUUT(h))
	assert.NoError(t, r.DisconnectUUT(h))

	require.NoError(t, r.ConnectUUT(h, &UUT{Load: &stubLoad{}}))
	connected, err := r.IsUUTConnected(h)
	require.NoError(t, err)
	assert.True(t, connected)

	require.NoError(t, r.DisconnectUUT(h))
	connected, err = r.IsUUTConnected(h)
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestUUTIsPerInstance(t *testing.T) {
	r := newTestRegistry(t)
	h1 := mustCreate(t, r)
	h2 := mustCreate(t, r)

	u := &UUT{Load: &stubLoad{}}
	require.NoError(t, r.ConnectUUT(h1, u))

	connected, err := r.IsUUTConnected(h2)
	require.NoError(t, err)
	assert.False(t, connected)

	// The same UUT may be shared by two instances; exclusivity is per instance.
	assert.NoError(t, r.ConnectUUT(h2, u))
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

func TestReadStatusOutputDisabled(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	load := &stubLoad{}
	require.NoError(t, r.SetVoltage(h, 12))
	require.NoError(t, r.SetCurrent(h, 2))
	require.NoError(t, r.ConnectUUT(h, &UUT{Load: load}))

	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.Equal(t, Status{}, st)
	load.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestReadStatusUnloaded(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	require.NoError(t, r.SetVoltage(h, 12))
	require.NoError(t, r.SetCurrent(h, 2))
	require.NoError(t, r.SetOutputState(h, true))

	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.Equal(t, Status{OutputState: true, Voltage: 12}, st)
}

func TestReadStatusEnabledWithoutSetpoint(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	require.NoError(t, r.SetOutputState(h, true))
	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.Equal(t, Status{OutputState: true}, st)
}

func TestReadStatusWithUUT(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	ctx := &struct{ name string }{"dut-7"}
	load := &stubLoad{}
	load.On("Respond", Supply{Voltage: 5, Current: 2}, ctx).
		Return(Supply{Voltage: 4.8, Current: 1.9}).Once()

	require.NoError(t, r.SetVoltage(h, 5))
	require.NoError(t, r.SetCurrent(h, 2))
	require.NoError(t, r.SetOutputState(h, true))
	require.NoError(t, r.ConnectUUT(h, &UUT{Load: load, Context: ctx}))

	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.True(t, st.OutputState)
	assert.Equal(t, 4.8, st.Voltage)
	assert.Equal(t, 1.9, st.Current)
	assert.InDelta(t, 9.12, st.Power, 1e-9)
	load.AssertExpectations(t)
}

func TestReadStatusDoesNotClampLoadOutput(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	wild := LoadModelFunc(func(Supply, any) Supply {
		return Supply{Voltage: 1000, Current: -3}
	})
	require.NoError(t, r.SetOutputState(h, true))
	require.NoError(t, r.ConnectUUT(h, &UUT{Load: wild}))

	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, st.Voltage)
	assert.Equal(t, -3.0, st.Current)
	assert.Equal(t, -3000.0, st.Power)
}

func TestReadStatusAfterDisconnect(t *testing.T) {
	r := newTestRegistry(t)
	h := mustCreate(t, r)

	load := &stubLoad{}
	require.NoError(t, r.SetVoltage(h, 7))
	require.NoError(t, r.SetOutputState(h, true))
	require.NoError(t, r.ConnectUUT(h, &UUT{Load: load}))
	require.NoError(t, r.DisconnectUUT(h))

	st, err := r.ReadStatus(h)
	require.NoError(t, err)
	assert.Equal(t, Status{OutputState: true, Voltage: 7}, st)
	load.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

// ---------------------------------------------------------------------------
// Errors and events
// ---------------------------------------------------------------------------

func TestResultOf(t *testing.T) {
	assert.Equal(t, api.ResultSuccess, ResultOf(nil))
	assert.Equal(t, api.ResultInternal, ResultOf(errors.New("boom")))

	for _, r := range []api.Result{
		api.ResultMaxHandles, api.ResultInvalidHandle, api.ResultBufferTooSmall,
		api.ResultInvalidParameter, api.ResultNullParameter, api.ResultUUTAlreadyConnected,
	} {
		err := ErrorFor(r)
		require.NotNil(t, err, r.String())
		assert.Equal(t, r, ResultOf(err))
	}
	assert.Nil(t, ErrorFor(api.ResultSuccess))
	assert.Nil(t, ErrorFor(api.ResultInternal))
}

func TestEventsAreEmitted(t *testing.T) {
	events := log.NewMemoryLogger()
	r := newTestRegistry(t, WithEventLogger(events), WithSessionID("bench-1"))

	h := mustCreate(t, r)
	require.NoError(t, r.SetVoltage(h, 5))
	require.ErrorIs(t, r.SetVoltage(h, 99), ErrInvalidParameter)
	require.NoError(t, r.SetOutputState(h, true))
	_, err := r.ReadStatus(h)
	require.NoError(t, err)
	require.NoError(t, r.Destroy(h))

	got := events.Events()
	require.Len(t, got, 6)

	for _, e := range got {
		assert.Equal(t, "bench-1", e.SessionID)
		assert.Equal(t, uint32(h), e.Handle)
	}

	assert.Equal(t, api.OpCreate, got[0].Operation)
	assert.Equal(t, log.CategoryLifecycle, got[0].Category)
	assert.Equal(t, DefaultProfile.Name, got[0].Model)

	assert.Equal(t, api.OpSetVoltage, got[1].Operation)
	require.NotNil(t, got[1].Setpoint)
	assert.Equal(t, 5.0, got[1].Setpoint.Value)

	assert.Equal(t, api.ResultInvalidParameter, got[2].Result)
	assert.Equal(t, log.CategoryError, got[2].Category)
	require.NotNil(t, got[2].Error)
	assert.Equal(t, "voltage 99", got[2].Error.Context)

	require.NotNil(t, got[4].Status)
	assert.Equal(t, 5.0, got[4].Status.Voltage)
	assert.False(t, got[4].Status.Loaded)

	assert.Equal(t, api.OpDestroy, got[5].Operation)
}

func TestWithEventLoggerNil(t *testing.T) {
	r := newTestRegistry(t, WithEventLogger(nil), WithSlogLogger(nil))
	mustCreate(t, r)
}

func TestSessionIDIsGenerated(t *testing.T) {
	a := New()
	b := New()
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
