// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"strings"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel is how much decoration the Console prints.
type PersonalityLevel string

const (
	// PersonalityFull adds tips on top of standard output.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard prints colored icons, titles and aligned tables.
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal prints plain icons without color.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine prints stable prefixed lines for scripts.
	PersonalityMachine PersonalityLevel = "machine"
)

// PersonalityEnvVar overrides the detected personality level.
const PersonalityEnvVar = "PYINIT_PERSONALITY"

// ParsePersonalityLevel accepts the level names and their short forms.
// Unknown values fall back to standard.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f":
		return PersonalityFull
	case "standard", "std", "s":
		return PersonalityStandard
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// ResolvePersonality picks a level from, in order, an explicit flag value,
// the PYINIT_PERSONALITY value, and whether output is a terminal.
//
//	ResolvePersonality("", "", false) == PersonalityMachine
//	ResolvePersonality("", "", true)  == PersonalityStandard
//	ResolvePersonality("full", "minimal", false) == PersonalityFull
func ResolvePersonality(flagValue, envValue string, terminal bool) PersonalityLevel {
	if flagValue != "" {
		return ParsePersonalityLevel(flagValue)
	}
	if envValue != "" {
		return ParsePersonalityLevel(envValue)
	}
	if !terminal {
		return PersonalityMachine
	}
	return PersonalityStandard
}

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a file descriptor attached to a terminal.
// Anything that is not an *os.File (buffers, pipes wrapped in writers) is
// not a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
