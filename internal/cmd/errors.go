package cmd

import "fmt"

// ExitCodeError carries a specific process exit code through the cobra
// error path to main.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an ExitCodeError with the given code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
