// Package errors provides structured error types for catimg.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Reports that name the failing stage and the offending dimensions
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow a category prefix convention:
//   - INVALID_*: Policy, path and configuration validation failures
//   - EMPTY_*: Nothing to compose
//   - CONCAT_*: Internal invariant violations while joining buffers
//   - DECODE_* / ENCODE_*: Failures surfaced from image I/O
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPolicy, "per-row must be at least 1, got %d", n).
//	    WithStage(errors.StageValidate)
//	if errors.Is(err, errors.ErrCodeInvalidPolicy) {
//	    // Ask the user to fix the flag
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecode, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidPolicy    Code = "INVALID_POLICY"
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Nothing to compose
	ErrCodeEmptyInput Code = "EMPTY_INPUT"
	ErrCodeEmptyGrid  Code = "EMPTY_GRID"

	// Invariant violations
	ErrCodeConcatMismatch Code = "CONCAT_MISMATCH"

	// Image I/O
	ErrCodeDecode Code = "DECODE_ERROR"
	ErrCodeEncode Code = "ENCODE_ERROR"
)

// Stage names the pipeline step an error originated in.
type Stage string

// Pipeline stages.
const (
	StageValidate  Stage = "validate"
	StageNormalize Stage = "normalize"
	StageResolve   Stage = "resolve"
	StageRow       Stage = "row"
	StageGrid      Stage = "grid"
	StageList      Stage = "list"
	StageDecode    Stage = "decode"
	StageEncode    Stage = "encode"
	StageConfig    Stage = "config"
)

// Size is a width/height pair reported alongside an error.
type Size struct {
	Width  int
	Height int
}

// String formats the size as WxH.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Stage   Stage  // Pipeline stage (optional)
	Message string // Human-readable message
	Dims    []Size // Offending dimensions (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Stage != "" {
		fmt.Fprintf(&b, " [%s]", e.Stage)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Dims) > 0 {
		b.WriteString(" (sizes: ")
		for i, d := range e.Dims {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.String())
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithStage sets the stage and returns e for chaining.
func (e *Error) WithStage(s Stage) *Error {
	e.Stage = s
	return e
}

// WithDims records the offending dimensions and returns e for chaining.
func (e *Error) WithDims(dims ...Size) *Error {
	e.Dims = append(e.Dims, dims...)
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain carries the given code.
// An INVALID_DIMENSION error wrapped in an INVALID_POLICY error matches both.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetStage extracts the stage of the outermost *Error that has one.
func GetStage(err error) Stage {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Stage != "" {
			return e.Stage
		}
		err = e.Cause
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// AtStage tags the outermost *Error in err's chain with stage s when it has
// no stage yet. Other errors are returned unchanged.
func AtStage(err error, s Stage) error {
	var e *Error
	if errors.As(err, &e) && e.Stage == "" {
		e.Stage = s
	}
	return err
}
