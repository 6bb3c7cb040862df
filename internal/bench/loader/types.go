// Package loader provides YAML bench script loading.
package loader

import (
	"fmt"

	"github.com/vdcsim/vdc-go/pkg/uut"
)

// Script is a bench script loaded from YAML.
type Script struct {
	// ID is the unique script identifier (e.g., "BS-LIFE-001").
	ID string `yaml:"id"`

	// Name is a human-readable name for the script.
	Name string `yaml:"name"`

	// Description explains what the script exercises.
	Description string `yaml:"description"`

	// Loads declares named load models that connect_uut steps refer to.
	// They are merged over the loads of the bench configuration.
	Loads map[string]uut.Spec `yaml:"loads,omitempty"`

	// Steps are the actions to execute in order.
	Steps []Step `yaml:"steps"`

	// Tags for selecting scripts.
	Tags []string `yaml:"tags,omitempty"`

	// Skip disables the script.
	Skip bool `yaml:"skip,omitempty"`

	// SkipReason is reported when Skip is set.
	SkipReason string `yaml:"skip_reason,omitempty"`

	// File is the path the script was loaded from. Not part of the YAML.
	File string `yaml:"-"`
}

// Step is a single action in a script.
type Step struct {
	// Action is the operation to perform (e.g., "create", "set_voltage").
	Action string `yaml:"action"`

	// Params are parameters for the action.
	Params map[string]any `yaml:"params,omitempty"`

	// Expect defines expected outcomes after the action.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Description explains what this step does.
	Description string `yaml:"description,omitempty"`

	// Line is the source line of the step. Not part of the YAML.
	Line int `yaml:"-"`
}

// LoadError provides details about a script loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	case e.File != "":
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
