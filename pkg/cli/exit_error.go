package cli

import (
	"errors"
	"fmt"

	"github.com/workflow-templates/templatelint/pkg/constants"
)

// ExitError carries a process exit status out of a command. A nil Err means
// the command already reported everything it had to say.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// fatal wraps err as a fatal input error.
func fatal(err error) error {
	return &ExitError{Code: constants.ExitFatal, Err: err}
}

// ExitCode maps a command error to the process exit status. Errors that are
// not ExitErrors, such as flag parsing errors, are fatal.
func ExitCode(err error) int {
	if err == nil {
		return constants.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return constants.ExitFatal
}

// IsSilent reports whether err needs no further message.
func IsSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Err == nil
}
