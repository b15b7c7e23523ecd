package synth

import (
	"errors"
	"fmt"
)

// GraphError represents a structural error in a graph operation.
//
// Structural errors include:
//   - Unknown module: a handle not present in the live-module set
//   - Unknown port/setting: a name not declared by the module
//   - Type mismatch: connecting ports with different declared types
//
// Structural errors are reported to the caller (the host/UI layer) and never
// corrupt graph state: a failed operation leaves every connection as it was.
type GraphError struct {
	// Code identifies the error category.
	Code GraphErrorCode

	// Message is a human-readable description.
	Message string

	// Module names the module involved, if known.
	Module string

	// Port names the port or setting involved, if any.
	Port string
}

// GraphErrorCode categorizes graph-structural errors.
type GraphErrorCode string

const (
	// ErrCodeUnknownModule indicates a handle not present in the graph.
	ErrCodeUnknownModule GraphErrorCode = "UNKNOWN_MODULE"

	// ErrCodeUnknownInput indicates an input name the module does not declare.
	ErrCodeUnknownInput GraphErrorCode = "UNKNOWN_INPUT"

	// ErrCodeUnknownOutput indicates an output name the module does not declare.
	ErrCodeUnknownOutput GraphErrorCode = "UNKNOWN_OUTPUT"

	// ErrCodeUnknownSetting indicates a setting name the module does not declare.
	ErrCodeUnknownSetting GraphErrorCode = "UNKNOWN_SETTING"

	// ErrCodeTypeMismatch indicates a connection between ports whose declared
	// types differ. The engine never coerces, so such an edge could only ever
	// deliver wrong bindings; it is rejected at connect time.
	ErrCodeTypeMismatch GraphErrorCode = "TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	switch {
	case e.Module != "" && e.Port != "":
		return fmt.Sprintf("%s: %s (module=%s, port=%s)", e.Code, e.Message, e.Module, e.Port)
	case e.Module != "":
		return fmt.Sprintf("%s: %s (module=%s)", e.Code, e.Message, e.Module)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsTypeMismatch returns true if the error is a connect-time type mismatch.
// Uses errors.As to handle wrapped errors.
func IsTypeMismatch(err error) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeTypeMismatch
	}
	return false
}

// SpecError reports an invalid module declaration: a default value that does
// not satisfy its declared type, a duplicate port name, an out-of-range enum
// default, or a missing evaluator constructor.
//
// A SpecError is a module-authoring bug, not a recoverable runtime condition.
// CreateModule returns it before the module joins the graph, so a module with
// a bad declaration is never evaluated.
type SpecError struct {
	Module string // module type name
	Decl   string // offending declaration (port or setting name), if any
	Reason string
}

// Error implements the error interface.
func (e *SpecError) Error() string {
	if e.Decl != "" {
		return fmt.Sprintf("invalid module spec %q: %s: %s", e.Module, e.Decl, e.Reason)
	}
	return fmt.Sprintf("invalid module spec %q: %s", e.Module, e.Reason)
}

// StepError records a module computation failure during a step.
//
// It is captured on the failing module's LastError slot and never propagates
// out of Step. The module's outputs keep their previous values for the step.
type StepError struct {
	Module string  // module type name
	Time   float64 // logical time of the failing step
	Err    error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("module %q failed at t=%g: %v", e.Module, e.Time, e.Err)
}

// Unwrap returns the underlying computation error.
func (e *StepError) Unwrap() error {
	return e.Err
}
