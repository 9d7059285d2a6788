// Package lvunit provides public constants for external tools integrating with lvunit.
package lvunit

// Exit codes returned by the lvunit CLI.
// These constants allow CI scripts to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates every run passed, or some failed and strict mode was off.
	ExitSuccess = 0

	// ExitFailure indicates at least one run failed while strict mode was on.
	ExitFailure = 1

	// ExitConfigError indicates bad usage or an invalid configuration file.
	ExitConfigError = 2
)
