package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	Mutating          int
	EventsByCategory  map[log.Category]int
	EventsByOperation map[api.Operation]int
	Failures          map[api.Result]int
	Sessions          map[string]*SessionStats
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single registry session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Created   int
	Destroyed int
	Models    map[string]bool
}

// Collect reads every event from r into a Stats.
func Collect(r *log.Reader) (*Stats, error) {
	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByOperation: make(map[api.Operation]int),
		Failures:          make(map[api.Result]int),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByOperation[event.Operation]++
		if event.Operation.IsMutating() {
			stats.Mutating++
		}
		if event.Result.IsError() {
			stats.Failures[event.Result]++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Models:    make(map[string]bool),
			}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}
		if event.Result.IsSuccess() {
			switch event.Operation {
			case api.OpCreate:
				sess.Created++
			case api.OpDestroy:
				sess.Destroyed++
			}
		}
		if event.Model != "" {
			sess.Models[event.Model] = true
		}
	}
	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats, err := Collect(reader)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== VDC Bench Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "  %d state-changing, %d read-only\n", stats.Mutating, stats.TotalEvents-stats.Mutating)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for c := log.CategoryLifecycle; c <= log.CategoryError; c++ {
		if count := stats.EventsByCategory[c]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Operation:")
	for op := api.OpCreate; op <= api.OpReadStatus; op++ {
		if count := stats.EventsByOperation[op]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSessionID(s.id), s.stats.Events, duration)
			fmt.Fprintf(w, "           Instances: %d created, %d destroyed\n", s.stats.Created, s.stats.Destroyed)
			if len(s.stats.Models) > 0 {
				models := make([]string, 0, len(s.stats.Models))
				for m := range s.stats.Models {
					models = append(models, m)
				}
				sort.Strings(models)
				for _, m := range models {
					fmt.Fprintf(w, "           Model: %s\n", m)
				}
			}
		}
	}

	failed := 0
	for _, n := range stats.Failures {
		failed += n
	}
	if failed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Failures: %d\n", failed)
		for r := api.ResultInternal; r <= api.ResultUUTAlreadyConnected; r++ {
			if count := stats.Failures[r]; count > 0 {
				fmt.Fprintf(w, "  %-24s %d\n", r.String()+":", count)
			}
		}
	}
}
