package log

import "sync"

// MemoryLogger keeps events in memory. The bench engine uses it to check
// event expectations; tests use it to assert on emitted events.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryLogger creates an empty MemoryLogger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log appends the event.
func (m *MemoryLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of the recorded events in order.
func (m *MemoryLogger) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Filter returns the recorded events matching f.
func (m *MemoryLogger) Filter(f Filter) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (m *MemoryLogger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// Reset drops all recorded events.
func (m *MemoryLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Compile-time interface satisfaction check.
var _ Logger = (*MemoryLogger)(nil)
