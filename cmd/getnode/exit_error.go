package main

import (
	"errors"

	"github.com/ZebulonRouseFrantzich/getnode/internal/install"
)

// Exit codes reported by getnode.
const (
	exitOK           = 0
	exitFailure      = 1
	exitUsage        = 2
	exitNotFound     = 3
	exitConnectivity = 4
	exitIntegrity    = 5
)

// ExitError carries an exit code alongside the error that caused it.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: exitUsage, Err: err}
}

// exitCode maps err to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var acqErr *install.AcquisitionError
	if !errors.As(err, &acqErr) {
		return exitFailure
	}
	switch acqErr.Kind {
	case install.KindInvalidRequest:
		return exitUsage
	case install.KindNotFound:
		return exitNotFound
	case install.KindConnectivity:
		return exitConnectivity
	case install.KindIntegrity:
		return exitIntegrity
	default:
		return exitFailure
	}
}
