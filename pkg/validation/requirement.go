// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user input before it reaches a subprocess.
//
// Arguments given to pyinit add and remove are handed to pip. Checking them
// here keeps a stray "--index-url" or a shell fragment from being read as a
// pip option.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRequirement is wrapped by every rejection.
var ErrInvalidRequirement = errors.New("invalid requirement")

// requirementPattern matches a distribution name with optional extras and
// version clauses, e.g. "requests", "uvicorn[standard]>=0.29,<1".
var requirementPattern = regexp.MustCompile(
	`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?` +
		`(\[[A-Za-z0-9._-]+(,[A-Za-z0-9._-]+)*\])?` +
		`((===|==|!=|~=|>=|<=|>|<)[A-Za-z0-9.*+!_-]+` +
		`(,(===|==|!=|~=|>=|<=|>|<)[A-Za-z0-9.*+!_-]+)*)?$`)

// ValidateRequirement checks one requirement specifier.
//
// Valid requirements:
//   - a name of letters, digits, '.', '_' and '-', not starting or ending
//     with punctuation
//   - optional extras in brackets: "httpx[http2]"
//   - optional comma-separated version clauses: ">=2,<3"
//
// Whitespace inside the specifier is rejected. Direct references (URLs,
// local paths, "name @ url") are not accepted.
//
// Example:
//
//	if err := validation.ValidateRequirement(arg); err != nil {
//	    return err
//	}
//	// Safe to pass to pip install
func ValidateRequirement(req string) error {
	if req == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRequirement)
	}
	if !requirementPattern.MatchString(req) {
		return fmt.Errorf("%w: %q (want NAME, NAME[extra] or NAME>=VERSION)", ErrInvalidRequirement, req)
	}
	return nil
}

// ValidateRequirements validates every entry and lists all rejected ones.
func ValidateRequirements(reqs []string) error {
	var invalid []string
	for _, r := range reqs {
		if err := ValidateRequirement(r); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", r))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequirement, strings.Join(invalid, ", "))
	}
	return nil
}

// SanitizeRequirement trims surrounding whitespace and validates.
//
//	safe, err := validation.SanitizeRequirement("  Django>=5 ")
//	// safe == "Django>=5"
func SanitizeRequirement(req string) (string, error) {
	trimmed := strings.TrimSpace(req)
	if err := ValidateRequirement(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
