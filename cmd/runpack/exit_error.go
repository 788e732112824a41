// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/invowk/runpack/pkg/types"
)

// ExitError carries the process exit status out of a RunE handler.
type ExitError struct {
	Code types.ExitCode
	Err  error
	// Reported is set once the failure has been printed, so the fang error
	// handler stays silent.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode maps a command result to the process status: nil is success, an
// ExitError keeps its code, anything else is a generic failure.
func exitCode(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}
