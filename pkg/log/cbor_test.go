package log

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/vdcsim/vdc-go/pkg/api"
)

func TestEncodeDecodeStatusEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	event := Event{
		Timestamp: ts,
		SessionID: "sess-1",
		Handle:    3,
		Operation: api.OpReadStatus,
		Result:    api.ResultSuccess,
		Category:  CategoryMeasurement,
		Status: &StatusEvent{
			OutputState: true,
			Voltage:     4.8,
			Current:     1.9,
			Power:       9.12,
			Loaded:      true,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v (nanoseconds must survive)", decoded.Timestamp, ts)
	}
	if decoded.Handle != 3 {
		t.Errorf("Handle: got %d, want 3", decoded.Handle)
	}
	if decoded.Operation != api.OpReadStatus {
		t.Errorf("Operation: got %v, want %v", decoded.Operation, api.OpReadStatus)
	}
	if decoded.Status == nil {
		t.Fatal("Status payload lost")
	}
	if decoded.Status.Power != 9.12 || !decoded.Status.Loaded {
		t.Errorf("Status: got %+v", decoded.Status)
	}
	if decoded.Setpoint != nil || decoded.Load != nil || decoded.Error != nil {
		t.Error("unexpected payloads decoded")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	event := Event{
		Timestamp: time.Unix(1700000000, 0).UTC(),
		SessionID: "sess",
		Handle:    1,
		Operation: api.OpSetVoltage,
		Category:  CategoryControl,
		Setpoint:  &SetpointEvent{Quantity: QuantityVoltage, Value: 12},
	}

	a, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	b, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestSuccessResultIsEncoded(t *testing.T) {
	// SUCCESS is 0; it must still decode as an explicit value, not as
	// a missing field that a reader could confuse with another code.
	data, err := EncodeEvent(Event{Operation: api.OpCreate, Result: api.ResultSuccess})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var raw map[int]any
	if err := logDecMode.Unmarshal(data, &raw); err != nil {
		t.Fatalf("raw decode failed: %v", err)
	}
	if _, ok := raw[5]; !ok {
		t.Error("result key 5 missing from encoding")
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := uint32(1); i <= 3; i++ {
		if err := enc.Encode(Event{Handle: i, Operation: api.OpDestroy}); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	for i := uint32(1); i <= 3; i++ {
		var e Event
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if e.Handle != i {
			t.Errorf("event %d: Handle = %d", i, e.Handle)
		}
	}
}

func TestFloatsUseShortestExactWidth(t *testing.T) {
	data, err := EncodeEvent(Event{
		Operation: api.OpSetVoltage,
		Setpoint:  &SetpointEvent{Quantity: QuantityVoltage, Value: 2.5},
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	// 2.5 fits a half-precision float: major type 7, 0xf9 0x41 0x00.
	if !bytes.Contains(data, []byte{0xf9, 0x41, 0x00}) {
		t.Errorf("2.5 not encoded as float16: %x", data)
	}

	for _, v := range []float64{0.1, 12.345, 29.999, 1e-9, math.MaxFloat64} {
		data, err := EncodeEvent(Event{Setpoint: &SetpointEvent{Value: v}})
		if err != nil {
			t.Fatalf("EncodeEvent(%g) failed: %v", v, err)
		}
		decoded, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("DecodeEvent(%g) failed: %v", v, err)
		}
		if decoded.Setpoint.Value != v {
			t.Errorf("value %g decoded as %g", v, decoded.Setpoint.Value)
		}
	}
}

func TestNonFiniteReadingsSurvive(t *testing.T) {
	data, err := EncodeEvent(Event{
		Operation: api.OpReadStatus,
		Status:    &StatusEvent{OutputState: true, Voltage: math.NaN(), Current: math.Inf(1), Power: math.Inf(-1)},
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	st := decoded.Status
	if !math.IsNaN(st.Voltage) || !math.IsInf(st.Current, 1) || !math.IsInf(st.Power, -1) {
		t.Errorf("decoded status = %+v", st)
	}
}
