// SPDX-License-Identifier: MPL-2.0

package host

// Result carries the outcome of invoking a symbol or running a unit.
type Result struct {
	// ExitCode is the shell exit status, forwarded unchanged.
	ExitCode int

	// Output is captured stdout (capture calls only).
	Output string

	// ErrOutput is captured stderr (capture calls only).
	ErrOutput string

	// Error is set for infrastructure failures, not for ordinary non-zero
	// exits.
	Error error
}

// NewErrorResult creates a Result for an infrastructure failure.
func NewErrorResult(code int, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result for a normal termination with the
// given status.
func NewExitCodeResult(code int) *Result {
	return &Result{ExitCode: code}
}
