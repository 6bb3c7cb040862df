// Package reporter formats bench results.
package reporter

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vdcsim/vdc-go/internal/bench/engine"
)

// Reporter formats and outputs bench results.
type Reporter interface {
	// ReportSuite reports results for a run.
	ReportSuite(result *engine.SuiteResult)

	// ReportScript reports results for a single script.
	ReportScript(result *engine.ScriptResult)
}

// New returns the reporter for format ("text", "json" or "junit").
func New(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w, verbose), nil
	case "json":
		return NewJSONReporter(w, verbose), nil
	case "junit":
		return NewJUnitReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func status(r *engine.ScriptResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Passed:
		return "passed"
	default:
		return "failed"
	}
}

func passRate(result *engine.SuiteResult) float64 {
	total := result.PassCount + result.FailCount
	if total == 0 {
		return 0
	}
	return float64(result.PassCount) / float64(total) * 100
}

func sortedExpectKeys(m map[string]*engine.ExpectResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// ReportSuite reports suite results in text format.
func (r *TextReporter) ReportSuite(result *engine.SuiteResult) {
	fmt.Fprintf(r.writer, "\n=== Suite: %s ===\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Duration: %s\n\n", result.Duration.Round(time.Millisecond))

	for _, sr := range result.Results {
		r.ReportScript(sr)
	}

	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:   %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed:  %d\n", result.PassCount)
	fmt.Fprintf(r.writer, "Failed:  %d\n", result.FailCount)
	fmt.Fprintf(r.writer, "Skipped: %d\n", result.SkipCount)
	if result.PassCount+result.FailCount > 0 {
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", passRate(result))
	}
}

var textStatus = map[string]string{"passed": "PASS", "failed": "FAIL", "skipped": "SKIP"}

// ReportScript reports a single script result in text format.
func (r *TextReporter) ReportScript(result *engine.ScriptResult) {
	s := result.Script

	fmt.Fprintf(r.writer, "[%s] %s - %s (%s)\n",
		textStatus[status(result)], s.ID, s.Name, result.Duration.Round(time.Millisecond))

	if result.Skipped && result.SkipReason != "" {
		fmt.Fprintf(r.writer, "       Skip reason: %s\n", result.SkipReason)
	}
	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}

	if !r.verbose {
		return
	}
	for _, st := range result.StepResults {
		stepStatus := "PASS"
		if !st.Passed {
			stepStatus = "FAIL"
		}
		fmt.Fprintf(r.writer, "    [%s] Step %d: %s\n", stepStatus, st.StepIndex+1, st.Step.Action)
		if st.Step.Description != "" {
			fmt.Fprintf(r.writer, "           %s\n", st.Step.Description)
		}
		for _, key := range sortedExpectKeys(st.ExpectResults) {
			er := st.ExpectResults[key]
			expStatus := "OK"
			if !er.Passed {
				expStatus = "FAILED"
			}
			fmt.Fprintf(r.writer, "           [%s] %s: %s\n", expStatus, key, er.Message)
		}
	}
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONSuiteResult is the JSON representation of suite results.
type JSONSuiteResult struct {
	SuiteName string             `json:"suite_name"`
	Duration  string             `json:"duration"`
	Total     int                `json:"total"`
	Passed    int                `json:"passed"`
	Failed    int                `json:"failed"`
	Skipped   int                `json:"skipped"`
	PassRate  float64            `json:"pass_rate"`
	Scripts   []JSONScriptResult `json:"scripts"`
}

// JSONScriptResult is the JSON representation of a script result.
type JSONScriptResult struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	File       string           `json:"file,omitempty"`
	Status     string           `json:"status"`
	Duration   string           `json:"duration"`
	Error      string           `json:"error,omitempty"`
	SkipReason string           `json:"skip_reason,omitempty"`
	Steps      []JSONStepResult `json:"steps,omitempty"`
}

// JSONStepResult is the JSON representation of a step result.
type JSONStepResult struct {
	Index   int                   `json:"index"`
	Action  string                `json:"action"`
	Line    int                   `json:"line,omitempty"`
	Status  string                `json:"status"`
	Error   string                `json:"error,omitempty"`
	Expects map[string]JSONExpect `json:"expects,omitempty"`
	Outputs map[string]any        `json:"outputs,omitempty"`
}

// JSONExpect is the JSON representation of an expectation result.
type JSONExpect struct {
	Passed   bool   `json:"passed"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Message  string `json:"message"`
}

// ReportSuite reports suite results in JSON format.
func (r *JSONReporter) ReportSuite(result *engine.SuiteResult) {
	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		Skipped:   result.SkipCount,
		PassRate:  passRate(result),
		Scripts:   make([]JSONScriptResult, 0, len(result.Results)),
	}
	for _, sr := range result.Results {
		jr.Scripts = append(jr.Scripts, scriptToJSON(sr))
	}
	r.writeJSON(jr)
}

// ReportScript reports a single script result in JSON format.
func (r *JSONReporter) ReportScript(result *engine.ScriptResult) {
	r.writeJSON(scriptToJSON(result))
}

func scriptToJSON(result *engine.ScriptResult) JSONScriptResult {
	s := result.Script
	jr := JSONScriptResult{
		ID:         s.ID,
		Name:       s.Name,
		File:       s.File,
		Status:     status(result),
		Duration:   result.Duration.Round(time.Millisecond).String(),
		SkipReason: result.SkipReason,
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}

	for _, st := range result.StepResults {
		js := JSONStepResult{
			Index:   st.StepIndex,
			Action:  st.Step.Action,
			Line:    st.Step.Line,
			Status:  "passed",
			Outputs: st.Output,
		}
		if !st.Passed {
			js.Status = "failed"
		}
		if st.Error != nil {
			js.Error = st.Error.Error()
		}
		if len(st.ExpectResults) > 0 {
			js.Expects = make(map[string]JSONExpect, len(st.ExpectResults))
			for key, er := range st.ExpectResults {
				js.Expects[key] = JSONExpect{
					Passed:   er.Passed,
					Expected: er.Expected,
					Actual:   er.Actual,
					Message:  er.Message,
				}
			}
		}
		jr.Steps = append(jr.Steps, js)
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`+"\n", err)
		return
	}
	fmt.Fprintln(r.writer, string(data))
}

// JUnitReporter outputs JUnit XML for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Detail  string `xml:",cdata"`
}

// ReportSuite reports suite results in JUnit XML format.
func (r *JUnitReporter) ReportSuite(result *engine.SuiteResult) {
	suite := junitSuite{
		Name:     result.SuiteName,
		Tests:    len(result.Results),
		Failures: result.FailCount,
		Skipped:  result.SkipCount,
		Time:     fmt.Sprintf("%.3f", result.Duration.Seconds()),
	}

	for _, sr := range result.Results {
		c := junitCase{
			Name:      sr.Script.Name,
			Classname: sr.Script.ID,
			Time:      fmt.Sprintf("%.3f", sr.Duration.Seconds()),
		}
		switch {
		case sr.Skipped:
			c.Skipped = &junitMessage{Message: sr.SkipReason}
		case !sr.Passed && sr.Error != nil:
			f := &junitFailure{Message: sr.Error.Error()}
			for _, st := range sr.StepResults {
				if !st.Passed {
					f.Detail += fmt.Sprintf("Step %d (%s): %v\n", st.StepIndex+1, st.Step.Action, st.Error)
				}
			}
			c.Failure = f
		}
		suite.Cases = append(suite.Cases, c)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		fmt.Fprintf(r.writer, "<!-- failed to marshal: %s -->\n", err)
		return
	}
	fmt.Fprint(r.writer, xml.Header)
	fmt.Fprintln(r.writer, string(data))
}

// ReportScript reports a single script wrapped in a minimal suite.
func (r *JUnitReporter) ReportScript(result *engine.ScriptResult) {
	suite := &engine.SuiteResult{
		SuiteName: result.Script.ID,
		Results:   []*engine.ScriptResult{result},
		Duration:  result.Duration,
	}
	switch {
	case result.Skipped:
		suite.SkipCount = 1
	case result.Passed:
		suite.PassCount = 1
	default:
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}
