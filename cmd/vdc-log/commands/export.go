package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/vdcsim/vdc-go/pkg/log"
)

// RunExport exports the log file to the specified format. An empty output
// path writes to stdout.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// jsonEvent is the JSONL shape of an event. Enumerations are written by
// name so exports stay readable without the code tables.
type jsonEvent struct {
	Timestamp string              `json:"timestamp"`
	SessionID string              `json:"session_id"`
	Handle    uint32              `json:"handle"`
	Operation string              `json:"operation"`
	Result    string              `json:"result"`
	Category  string              `json:"category"`
	Model     string              `json:"model,omitempty"`
	Setpoint  *jsonSetpoint       `json:"setpoint,omitempty"`
	Status    *log.StatusEvent    `json:"status,omitempty"`
	Load      *log.LoadEvent      `json:"load,omitempty"`
	Error     *log.ErrorEventData `json:"error,omitempty"`
}

type jsonSetpoint struct {
	Quantity string  `json:"quantity"`
	Value    float64 `json:"value"`
}

func toJSONEvent(e log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp: e.Timestamp.UTC().Format(timeFormat),
		SessionID: e.SessionID,
		Handle:    e.Handle,
		Operation: e.Operation.String(),
		Result:    e.Result.String(),
		Category:  e.Category.String(),
		Model:     e.Model,
		Status:    e.Status,
		Load:      e.Load,
		Error:     e.Error,
	}
	if e.Setpoint != nil {
		je.Setpoint = &jsonSetpoint{Quantity: e.Setpoint.Quantity.String(), Value: e.Setpoint.Value}
	}
	return je
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{"timestamp", "session_id", "handle", "operation", "result", "category", "detail"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format(timeFormat),
			event.SessionID,
			strconv.FormatUint(uint64(event.Handle), 10),
			event.Operation.String(),
			event.Result.String(),
			event.Category.String(),
			csvDetail(event),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvDetail summarizes the event payload in one cell.
func csvDetail(e log.Event) string {
	switch {
	case e.Model != "":
		return e.Model
	case e.Setpoint != nil:
		if e.Setpoint.Quantity == log.QuantityOutput {
			return "output=" + onOff(e.Setpoint.Value != 0)
		}
		return formatFloat(e.Setpoint.Value) + e.Setpoint.Quantity.Unit()
	case e.Status != nil:
		return fmt.Sprintf("%sV %sA %sW",
			formatFloat(e.Status.Voltage), formatFloat(e.Status.Current), formatFloat(e.Status.Power))
	case e.Load != nil:
		return "connected=" + strconv.FormatBool(e.Load.Connected)
	case e.Error != nil:
		return e.Error.Message
	}
	return ""
}
