// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without an extra error line.
// Commands that already printed their own output return this so main
// exits silently with the given code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the desired process exit code. main checks for
// this interface to distinguish handled non-zero exits from errors
// worth printing.
func (e *ExitError) ExitCode() int {
	return e.Code
}
