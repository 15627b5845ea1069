// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package util

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Kinds
// =============================================================================

var (
	// ErrNotFound indicates a project root or required file is missing.
	ErrNotFound = errors.New("not found")

	// ErrExternalTool indicates a wrapped process failed or could not be started.
	ErrExternalTool = errors.New("external tool failed")

	// ErrValidation indicates user input failed sanitization or validation.
	ErrValidation = errors.New("validation failed")
)

// Exit codes returned by the pyinit binary.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitBadArgs = 2
)

// =============================================================================
// Command Error Type
// =============================================================================

// CommandError wraps an external tool failure with stderr context.
//
// # Description
//
// Carries the command line that failed, its exit code and trimmed stderr.
// Every CommandError matches ErrExternalTool under errors.Is, so callers
// can classify it without a type assertion.
//
// # Example
//
//	err := NewCommandError("python -m pip install requests", 1, "no network", nil)
//	fmt.Println(err.Error()) // "python -m pip install requests (exit 1): no network"
//	errors.Is(err, ErrExternalTool) // true
//
// # Limitations
//
//   - Stderr is stored as a single string, not streaming
//   - ExitCode is -1 when the process never started
type CommandError struct {
	// Command is the command line that was executed.
	Command string

	// ExitCode is the process exit code (-1 if unknown).
	ExitCode int

	// Stderr contains the standard error output (trimmed).
	Stderr string

	// Wrapped is the underlying error (may be nil).
	Wrapped error
}

// Error returns "<command> (exit N): <stderr or cause>".
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is ErrExternalTool.
func (e *CommandError) Is(target error) bool {
	return target == ErrExternalTool
}

var _ error = (*CommandError)(nil)

// NewCommandError creates a CommandError with trimmed stderr.
func NewCommandError(cmd string, exitCode int, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Wrapped:  wrapped,
	}
}
