// Package errors provides structured error types and exit codes for lvunit.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the lvunit process.
const (
	ExitSuccess      = 0 // Success (also returned for failed runs unless strict mode is on)
	ExitRuntimeError = 1 // A run failed and strict mode is on
	ExitConfigError  = 2 // Bad usage or invalid configuration
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota // external tool exited non-zero
	KindConfig                   // invalid input, unresolvable LabVIEW path
	KindLaunch                   // external tool could not be started
	KindTimeout                  // run exceeded its deadline or was interrupted
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindRuntime:
		return "runtime"
	case KindConfig:
		return "config"
	case KindLaunch:
		return "launch"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the base error type for lvunit.
type Error struct {
	Kind    ErrorKind
	Message string
	Project string // Project path if applicable
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Project != "" {
		msg = fmt.Sprintf("[%s] %s", e.Project, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	if e.Kind == KindConfig {
		return ExitConfigError
	}
	return ExitRuntimeError
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Launch creates an error for an external tool that could not be started.
func Launch(project string, cause error) *Error {
	return &Error{
		Kind:    KindLaunch,
		Message: "failed to launch LabVIEW CLI",
		Project: project,
		Cause:   cause,
	}
}

// Runtime creates an error for an external tool that exited with a non-zero code.
func Runtime(project string, exitCode int, cause error) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: fmt.Sprintf("LabVIEW CLI exited with code %d", exitCode),
		Project: project,
		Cause:   cause,
	}
}

// Timeout creates an error for a run that was cancelled before the tool exited.
func Timeout(project string, cause error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "run cancelled before LabVIEW CLI exited",
		Project: project,
		Cause:   cause,
	}
}

// IsKind reports whether err is or wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitRuntimeError
}
