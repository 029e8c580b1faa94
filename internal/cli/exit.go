package cli

import "fmt"

const (
	ExitFailure = 1
	ExitConfig  = 2
	ExitAuth    = 3
)

// ExitError carries a specific process exit code from a command to main.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
