// Command vdc-log is a tool for viewing and analyzing VDC bench event logs.
//
// Event logs are written by vdc-bench when run with the -event-log flag.
//
// Usage:
//
//	vdc-log <command> [flags] <file.vlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	vdc-log view bench.vlog
//
//	# View failed calls on handle 2
//	vdc-log view -failures -handle 2 bench.vlog
//
//	# Export to JSONL
//	vdc-log export -format jsonl bench.vlog
//
//	# Keep only status reads
//	vdc-log filter -operation read_status -o status.vlog bench.vlog
//
//	# Show statistics
//	vdc-log stats bench.vlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vdcsim/vdc-go/cmd/vdc-log/commands"
)

const usage = `vdc-log - VDC Bench Event Log Analyzer

Usage:
  vdc-log <command> [flags] <file.vlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "vdc-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the event selection flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterFlags {
	ff := &commands.FilterFlags{}
	fs.StringVar(&ff.SessionID, "session", "", "Filter by session ID")
	fs.IntVar(&ff.Handle, "handle", -1, "Filter by handle")
	fs.StringVar(&ff.Operation, "operation", "", "Filter by operation (e.g. set_voltage, read_status)")
	fs.StringVar(&ff.Category, "category", "", "Filter by category ("+commands.CategoryNames()+")")
	fs.StringVar(&ff.Result, "result", "", "Filter by result code (e.g. INVALID_HANDLE)")
	fs.BoolVar(&ff.Failures, "failures", false, "Only show failed calls")
	return ff
}

// pathArg returns the single log file argument or exits.
func pathArg(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vdc-log view - View log file in human-readable format

Usage:
  vdc-log view [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}
	ff := filterFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	filter, err := ff.Build()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vdc-log export - Export log file to JSONL or CSV format

Usage:
  vdc-log export [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vdc-log filter - Filter log file and write to new file

Usage:
  vdc-log filter [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	ff := filterFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:      *output,
		TimeStart:   *timeStart,
		TimeEnd:     *timeEnd,
		FilterFlags: *ff,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vdc-log stats - Show statistics about the log file

Usage:
  vdc-log stats <file.vlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
