package log

import (
	"testing"
	"time"

	"github.com/vdcsim/vdc-go/pkg/api"
)

func TestMultiLoggerCallsAll(t *testing.T) {
	m1 := NewMemoryLogger()
	m2 := NewMemoryLogger()
	m3 := NewMemoryLogger()

	multi := NewMultiLogger(m1, m2, m3)
	multi.Log(Event{Timestamp: time.Now(), SessionID: "sess-123", Operation: api.OpCreate})

	for i, m := range []*MemoryLogger{m1, m2, m3} {
		events := m.Events()
		if len(events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(events))
			continue
		}
		if events[0].SessionID != "sess-123" {
			t.Errorf("logger %d: SessionID = %q", i, events[0].SessionID)
		}
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	m := NewMemoryLogger()
	multi := NewMultiLogger(nil, m, nil)

	multi.Log(Event{Operation: api.OpDestroy})

	if m.Len() != 1 {
		t.Errorf("got %d events, want 1", m.Len())
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	// Must not panic.
	NewMultiLogger().Log(Event{})
}

func TestMemoryLoggerFilterAndReset(t *testing.T) {
	m := NewMemoryLogger()
	m.Log(Event{Handle: 1, Operation: api.OpCreate, Result: api.ResultSuccess})
	m.Log(Event{Handle: 1, Operation: api.OpSetVoltage, Result: api.ResultInvalidParameter})
	m.Log(Event{Handle: 2, Operation: api.OpCreate, Result: api.ResultSuccess})

	failures := m.Filter(Filter{FailuresOnly: true})
	if len(failures) != 1 || failures[0].Operation != api.OpSetVoltage {
		t.Errorf("failures: got %+v", failures)
	}

	h := uint32(2)
	if got := m.Filter(Filter{Handle: &h}); len(got) != 1 {
		t.Errorf("handle 2: got %d events, want 1", len(got))
	}

	// Events returns a copy.
	events := m.Events()
	events[0].Handle = 99
	if m.Events()[0].Handle != 1 {
		t.Error("Events() exposed internal slice")
	}

	m.Reset()
	if m.Len() != 0 {
		t.Errorf("Len after Reset = %d", m.Len())
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{Operation: api.OpReadStatus})
}
