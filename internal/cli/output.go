package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for folio commands.
const (
	ExitSuccess      = 0 // everything compiled, validated or passed
	ExitFailure      = 1 // outline rejected in a dry run, or scenarios failed
	ExitCommandError = 2 // bad arguments, missing database, or a book failed to compile
)

// ExitError carries the process exit code for a command error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope every folio command writes with --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of CLIResponse.
type CLIError struct {
	Code    string `json:"code"` // E0xx command, E1xx book record, E2xx compiler
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// BatchFailure details a command that ran over several books or scenarios
// and had some of them fail.
type BatchFailure struct {
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
	Items  []FailedInput `json:"items"`
}

// FailedInput names one failed book record path or scenario.
type FailedInput struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Add records a failure.
func (b *BatchFailure) Add(name, code, message string) {
	b.Failed++
	b.Items = append(b.Items, FailedInput{Name: name, Code: code, Message: message})
}

// Err summarizes the batch as a CLIError coded after its first failure,
// or returns nil when nothing failed.
func (b *BatchFailure) Err(noun string) *CLIError {
	if b.Failed == 0 {
		return nil
	}
	return &CLIError{
		Code:    b.Items[0].Code,
		Message: fmt.Sprintf("%d of %d %s failed", b.Failed, b.Total, noun),
		Details: b,
	}
}

// OutputFormatter writes command results as text or as a CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; defaults to Writer
	Verbose   bool
}

// Success writes data in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes a single error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Report writes an indented JSON envelope carrying data, marked as an
// error when failure is non-nil. Batch commands use it in JSON mode only;
// their text output is line-per-input.
func (f *OutputFormatter) Report(data any, failure *CLIError) error {
	response := CLIResponse{Status: "ok", Data: data}
	if failure != nil {
		response.Status = "error"
		response.Error = failure
	}
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// VerboseLog writes a line to ErrWriter when verbose mode is on, keeping
// JSON on Writer intact.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
