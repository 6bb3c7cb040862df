// Package interactive provides the interactive shell of vdc-bench.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/vdcsim/vdc-go/internal/bench/engine"
	"github.com/vdcsim/vdc-go/internal/bench/loader"
	"github.com/vdcsim/vdc-go/internal/bench/runner"
	"github.com/vdcsim/vdc-go/pkg/log"
	"github.com/vdcsim/vdc-go/pkg/uut"
)

// errQuit is returned by ParseCommand for quit and exit.
var errQuit = errors.New("quit")

// Shell handles interactive mode for vdc-bench.
type Shell struct {
	runner  *runner.Runner
	session *runner.Session
	events  *log.MemoryLogger
	rl      *readline.Instance
}

// New creates a shell on top of r. events may be nil.
func New(r *runner.Runner, events *log.MemoryLogger) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vdc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		runner: r,
		events: events,
		rl:     rl,
	}, nil
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("create"),
		readline.PcItem("destroy"),
		readline.PcItem("model"),
		readline.PcItem("spec", readline.PcItem("v"), readline.PcItem("i")),
		readline.PcItem("set", readline.PcItem("v"), readline.PcItem("i")),
		readline.PcItem("get", readline.PcItem("v"), readline.PcItem("i")),
		readline.PcItem("output", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("connect"),
		readline.PcItem("disconnect"),
		readline.PcItem("uut"),
		readline.PcItem("status"),
		readline.PcItem("events"),
		readline.PcItem("list"),
		readline.PcItem("loads"),
		readline.PcItem("reset"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.session = s.runner.NewSession(ctx)
	out := s.rl.Stdout()
	printHelp(out)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			cancel()
			return
		}

		if s.exec(ctx, out, line) {
			cancel()
			return
		}
	}
}

// exec runs one input line and reports whether the shell should exit.
func (s *Shell) exec(ctx context.Context, out io.Writer, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" || strings.HasPrefix(input, "#") {
		return false
	}

	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "help", "?":
		printHelp(out)
		return false
	case "list", "ls":
		s.printAliases(out)
		return false
	case "loads":
		fmt.Fprintf(out, "Loads: %s\n", strings.Join(s.session.Loads(), ", "))
		fmt.Fprintf(out, "Config types: %s\n", strings.Join(uut.Types(), ", "))
		return false
	case "events", "ev":
		n := 10
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		s.printEvents(out, n)
		return false
	}

	step, err := ParseCommand(input)
	if errors.Is(err, errQuit) {
		fmt.Fprintln(out, "Exiting...")
		return true
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return false
	}

	fmt.Fprintln(out, FormatResult(s.session.Exec(ctx, step)))
	return false
}

// ParseCommand converts a shell command into a script step. The optional
// trailing PSU argument is an alias, or #N for a raw handle.
func ParseCommand(line string) (*loader.Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	step := &loader.Step{Params: make(map[string]any)}
	// psu consumes the optional trailing target argument at index i.
	psu := func(i int) error {
		if len(args) > i+1 {
			return fmt.Errorf("too many arguments for %s", cmd)
		}
		if len(args) == i+1 {
			target := args[i]
			if raw, ok := strings.CutPrefix(target, "#"); ok {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("bad handle %q", target)
				}
				step.Params[runner.ParamHandle] = n
			} else {
				step.Params[runner.ParamPSU] = target
			}
		}
		return nil
	}
	quantity := func(q string, v, i string) (string, error) {
		switch strings.ToLower(q) {
		case "v", "voltage":
			return v, nil
		case "i", "c", "current":
			return i, nil
		}
		return "", fmt.Errorf("unknown quantity %q (use v or i)", q)
	}

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return nil, errQuit

	case "create", "new":
		step.Action = runner.ActionCreate
		err = psu(0)

	case "destroy", "del":
		step.Action = runner.ActionDestroy
		err = psu(0)

	case "model":
		step.Action = runner.ActionGetModel
		err = psu(0)

	case "spec":
		if len(args) < 1 {
			return nil, errors.New("usage: spec v|i [psu]")
		}
		if step.Action, err = quantity(args[0], runner.ActionVoltageSpec, runner.ActionCurrentSpec); err == nil {
			err = psu(1)
		}

	case "set":
		if len(args) < 2 {
			return nil, errors.New("usage: set v|i <value> [psu]")
		}
		if step.Action, err = quantity(args[0], runner.ActionSetVoltage, runner.ActionSetCurrent); err != nil {
			return nil, err
		}
		v, perr := strconv.ParseFloat(args[1], 64)
		if perr != nil {
			return nil, fmt.Errorf("bad value %q", args[1])
		}
		step.Params[runner.ParamValue] = v
		err = psu(2)

	case "get":
		if len(args) < 1 {
			return nil, errors.New("usage: get v|i [psu]")
		}
		if step.Action, err = quantity(args[0], runner.ActionGetVoltage, runner.ActionGetCurrent); err == nil {
			err = psu(1)
		}

	case "output", "out":
		if len(args) == 0 {
			step.Action = runner.ActionGetOutput
			break
		}
		switch strings.ToLower(args[0]) {
		case "on", "off":
			step.Action = runner.ActionSetOutput
			step.Params[runner.ParamEnabled] = strings.ToLower(args[0]) == "on"
			err = psu(1)
		default:
			step.Action = runner.ActionGetOutput
			err = psu(0)
		}

	case "connect", "attach":
		if len(args) < 1 {
			return nil, errors.New("usage: connect <load> [psu]")
		}
		step.Action = runner.ActionConnectUUT
		step.Params[runner.ParamLoad] = args[0]
		err = psu(1)

	case "disconnect", "detach":
		step.Action = runner.ActionDisconnectUUT
		err = psu(0)

	case "uut":
		step.Action = runner.ActionUUTConnected
		err = psu(0)

	case "status", "s":
		step.Action = runner.ActionReadStatus
		err = psu(0)

	case "reset":
		if len(args) > 0 {
			return nil, errors.New("reset takes no arguments")
		}
		step.Action = runner.ActionReset

	default:
		return nil, fmt.Errorf("unknown command: %s (type 'help')", cmd)
	}

	if err != nil {
		return nil, err
	}
	return step, nil
}

// FormatResult renders a step result on one line.
func FormatResult(res *engine.StepResult) string {
	if res.Output == nil || (len(res.Output) == 0 && res.Error != nil) {
		return fmt.Sprintf("Error: %v", res.Error)
	}

	var b strings.Builder
	if r, ok := res.Output[runner.KeyResult]; ok {
		b.WriteString(fmt.Sprint(r))
	} else {
		b.WriteString("OK")
	}

	keys := make([]string, 0, len(res.Output))
	for k := range res.Output {
		if k != runner.KeyResult && k != runner.KeyError {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s=%s", k, formatValue(res.Output[k]))
	}
	if msg, ok := res.Output[runner.KeyError]; ok {
		fmt.Fprintf(&b, "  (%v)", msg)
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	case string:
		if strings.ContainsAny(x, " \t") {
			return strconv.Quote(x)
		}
		return x
	default:
		return fmt.Sprint(v)
	}
}

func (s *Shell) printAliases(out io.Writer) {
	aliases := s.session.Aliases()
	if len(aliases) == 0 {
		fmt.Fprintln(out, "No instances created in this session.")
		return
	}
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	live := make(map[uint32]bool)
	for _, h := range s.runner.Registry().Handles() {
		live[uint32(h)] = true
	}
	for _, name := range names {
		h := uint32(aliases[name])
		state := "destroyed"
		if live[h] {
			state = "live"
		}
		fmt.Fprintf(out, "  %-12s handle %-2d %s\n", name, h, state)
	}
}

func (s *Shell) printEvents(out io.Writer, n int) {
	if s.events == nil {
		fmt.Fprintln(out, "Event capture is not enabled.")
		return
	}
	events := s.events.Events()
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		fmt.Fprintf(out, "  %s  #%-2d %-16s %s\n",
			e.Timestamp.Format(time.TimeOnly), e.Handle, e.Operation, e.Result)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `
Commands (psu is an alias, default "main", or #N for a raw handle):
  create [psu]              Create an instance and bind it to psu
  destroy [psu]             Destroy the instance
  model [psu]               Show the model name
  spec v|i [psu]            Show voltage or current limits
  set v|i <value> [psu]     Set the voltage or current setpoint
  get v|i [psu]             Read a setpoint back
  output [on|off] [psu]     Enable, disable or query the output
  connect <load> [psu]      Attach a configured load model
  disconnect [psu]          Detach the load model
  uut [psu]                 Report whether a load is attached
  status [psu]              Read output state, voltage, current and power
  events [n]                Show the last n captured events (default 10)
  list                      Show aliases and their handles
  loads                     Show configured loads
  reset                     Destroy every instance
  help                      Show this help
  quit                      Exit
`)
}
