package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // operation failed (storage fault, rejected write)
	ExitCommandError = 2 // command error (bad flags, unreadable config)
)

// ExitError carries a specific process exit code out of a command.
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure for errors that are not ExitErrors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// response is the envelope for JSON output.
type response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OutputFormatter renders command results as JSON or human-readable text.
// Text mode prints the result's String() form, so result types implement
// fmt.Stringer.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success renders a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure renders an error in the configured format.
func (f *OutputFormatter) Failure(err error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(response{Status: "error", Error: err.Error()})
	}
	fmt.Fprintf(f.Writer, "error: %v\n", err)
	return nil
}
