package commands

import (
	"path/filepath"
	"testing"

	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()
	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	return events
}

func TestFilterByOperation(t *testing.T) {
	path := createTestLogFile(t, benchEvents())
	out := filepath.Join(t.TempDir(), "filtered.vlog")

	n, err := RunFilter(path, FilterOptions{
		Output:      out,
		FilterFlags: FilterFlags{Handle: -1, Operation: "set_voltage"},
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("filtered %d events, want 1", n)
	}

	events := readAll(t, out)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Operation != api.OpSetVoltage {
		t.Errorf("Operation = %s, want set_voltage", events[0].Operation)
	}
	if events[0].Setpoint == nil || events[0].Setpoint.Value != 12.5 {
		t.Errorf("Setpoint = %+v, want 12.5", events[0].Setpoint)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	path := createTestLogFile(t, benchEvents())
	out := filepath.Join(t.TempDir(), "filtered.vlog")

	n, err := RunFilter(path, FilterOptions{
		Output:      out,
		TimeStart:   "2026-03-02T09:30:00Z",
		TimeEnd:     "2026-03-02T09:31:00Z",
		FilterFlags: FilterFlags{Handle: 1, Category: "error"},
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("filtered %d events, want 1", n)
	}

	n, err = RunFilter(path, FilterOptions{
		Output:      filepath.Join(t.TempDir(), "late.vlog"),
		TimeStart:   "2026-03-02T10:00:00Z",
		FilterFlags: FilterFlags{Handle: -1},
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 0 {
		t.Errorf("filtered %d events after the run, want 0", n)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, benchEvents())
	out := filepath.Join(t.TempDir(), "filtered.vlog")

	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"time start", FilterOptions{Output: out, TimeStart: "yesterday", FilterFlags: FilterFlags{Handle: -1}}},
		{"time end", FilterOptions{Output: out, TimeEnd: "tomorrow", FilterFlags: FilterFlags{Handle: -1}}},
		{"result", FilterOptions{Output: out, FilterFlags: FilterFlags{Handle: -1, Result: "nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunFilter(path, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
