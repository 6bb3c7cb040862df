// Package commands implements the vdc-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// FilterFlags holds the raw filter flag values shared by view and filter.
type FilterFlags struct {
	SessionID string
	Handle    int
	Operation string
	Category  string
	Result    string
	Failures  bool
}

// Build converts the flag values to a log.Filter. A negative Handle means
// no handle filter.
func (ff FilterFlags) Build() (log.Filter, error) {
	f := log.Filter{
		SessionID:    ff.SessionID,
		FailuresOnly: ff.Failures,
	}
	if ff.Handle >= 0 {
		h := uint32(ff.Handle)
		f.Handle = &h
	}
	if ff.Operation != "" {
		op, err := api.ParseOperation(ff.Operation)
		if err != nil {
			return f, err
		}
		f.Operation = &op
	}
	if ff.Category != "" {
		c, err := log.ParseCategory(ff.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if ff.Result != "" {
		r, err := api.ParseResult(ff.Result)
		if err != nil {
			return f, err
		}
		f.Result = &r
	}
	return f, nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] #handle operation RESULT CATEGORY
	ts := event.Timestamp.UTC().Format(timeFormat)
	fmt.Fprintf(w, "%s [session:%s] #%d %s %s %s\n",
		ts, shortenSessionID(event.SessionID), event.Handle,
		event.Operation, event.Result, event.Category)

	if event.Model != "" {
		fmt.Fprintf(w, "  Model: %q\n", event.Model)
	}

	switch {
	case event.Setpoint != nil:
		formatSetpointDetails(w, event.Setpoint)
	case event.Status != nil:
		formatStatusDetails(w, event.Status)
	case event.Load != nil:
		formatLoadDetails(w, event.Load)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatSetpointDetails(w io.Writer, sp *log.SetpointEvent) {
	if sp.Quantity == log.QuantityOutput {
		fmt.Fprintf(w, "  Output: %s\n", onOff(sp.Value != 0))
		return
	}
	fmt.Fprintf(w, "  %s: %s %s\n", sp.Quantity, formatFloat(sp.Value), sp.Quantity.Unit())
}

func formatStatusDetails(w io.Writer, st *log.StatusEvent) {
	fmt.Fprintf(w, "  Output: %s  %s V  %s A  %s W",
		onOff(st.OutputState), formatFloat(st.Voltage), formatFloat(st.Current), formatFloat(st.Power))
	if st.Loaded {
		fmt.Fprint(w, " (loaded)")
	}
	fmt.Fprintln(w)
}

func formatLoadDetails(w io.Writer, ld *log.LoadEvent) {
	fmt.Fprintf(w, "  Connected: %t\n", ld.Connected)
	if ld.Description != "" {
		fmt.Fprintf(w, "  Load: %s\n", ld.Description)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// RunView prints every event matching filter in human-readable form.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}

// joinNames renders a list of names for usage strings.
func joinNames[T fmt.Stringer](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = strings.ToLower(v.String())
	}
	return strings.Join(names, ", ")
}

// CategoryNames lists the accepted -category values.
func CategoryNames() string {
	return joinNames([]log.Category{
		log.CategoryLifecycle, log.CategoryControl, log.CategoryMeasurement,
		log.CategoryLoad, log.CategoryError,
	})
}
