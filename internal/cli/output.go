package cli

import (
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/roach88/adt/internal/schema"
	"github.com/roach88/adt/internal/state"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Invalid snapshot or failed scenario
	ExitCommandError = 2 // Command error (missing file, bad config, etc.)
)

// CLI error codes. Snapshot problems reuse the state package's E2xx codes.
const (
	ErrCodeGeneric  = "E001"
	ErrCodeNotFound = "E002"
	ErrCodeConfig   = "E003"
	ErrCodeSchema   = "E004"
	ErrCodeGolden   = "E005"
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string
	Err     error // optional cause
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure when err
// is not an *ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return ExitFailure
	}
	return exitErr.Code
}

// OutputFormatter writes command results either as text or as a JSON
// CLIResponse, depending on Format.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; falls back to Writer
	Verbose   bool
}

// CLIResponse is the envelope of every JSON result.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload, or the report of a failed check
	Error  *CLIError `json:"error,omitempty"` // set when Status is "error"
}

// CLIError describes a failure in a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`              // CLI code (E00x) or snapshot code (E2xx)
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (f *OutputFormatter) isJSON() bool {
	return f.Format == "json"
}

// encode writes one response. indent is used for reports that carry data.
func (f *OutputFormatter) encode(resp CLIResponse, indent bool) error {
	enc := gojson.NewEncoder(f.Writer)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}

// Success writes data as an "ok" response, or prints it as text.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data}, false)
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes an "error" response. In text mode details are printed only
// when Verbose is set.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		}, false)
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Report writes a failed check that still has a payload, such as a
// validation report, as an indented "error" response.
func (f *OutputFormatter) Report(code, message string, data any) error {
	return f.encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	}, true)
}

// SnapshotValid confirms a valid snapshot of the given kind. JSON output
// carries data as the payload.
func (f *OutputFormatter) SnapshotValid(kind string, data any) error {
	if f.isJSON() {
		return f.Success(data)
	}
	fmt.Fprintf(f.Writer, "✓ Valid %s snapshot\n", kind)
	return nil
}

// SnapshotFailure reports a snapshot that did not validate and returns the
// ExitFailure error for it. The code is that of the first problem, and every
// message of a *state.SnapshotError becomes a detail.
func (f *OutputFormatter) SnapshotFailure(message string, err error) error {
	code, details := snapshotProblem(err)
	_ = f.Error(code, message, details)
	return WrapExitError(ExitFailure, message, err)
}

func snapshotProblem(err error) (string, any) {
	var se *state.SnapshotError
	if !errors.As(err, &se) || len(se.Errors) == 0 {
		return ErrCodeGeneric, nil
	}
	return se.Errors[0].Code, se.Messages()
}

// Problems prints one indented line per validator error and schema
// violation, as "CODE: message (field)".
func (f *OutputFormatter) Problems(errs []state.ValidationError, violations []schema.Violation) {
	for _, e := range errs {
		if e.Field == "" {
			fmt.Fprintf(f.Writer, "  %s: %s\n", e.Code, e.Message)
			continue
		}
		fmt.Fprintf(f.Writer, "  %s: %s (%s)\n", e.Code, e.Message, e.Field)
	}
	for _, v := range violations {
		fmt.Fprintf(f.Writer, "  %s: %s\n", ErrCodeSchema, v.Error())
	}
}

// VerboseLog prints a diagnostic line when Verbose is set. It goes to
// ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter, or Writer when it is unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}

// commandError reports a command-level failure (exit code 2).
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
