// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dotenv

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// keyPattern is the POSIX variable name rule. It also keeps shell
// metacharacters out of the file.
var keyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// sensitiveMarkers flag a key whose value must not be printed.
var sensitiveMarkers = []string{"TOKEN", "SECRET", "KEY", "PASSWORD", "CREDENTIAL", "API_KEY", "AUTH"}

// EnvVar is one entry of a .env file.
//
// # Example
//
//	ev := NewEnvVar("API_TOKEN", "secret123")
//	fmt.Println(ev.Redacted()) // API_TOKEN=[REDACTED]
type EnvVar struct {
	Key   string
	Value string

	// Sensitive is derived from the key name by NewEnvVar.
	Sensitive bool
}

// NewEnvVar returns an EnvVar with Sensitive set from the key name.
func NewEnvVar(key, value string) EnvVar {
	return EnvVar{Key: key, Value: value, Sensitive: IsSensitiveKey(key)}
}

// ParseAssignment splits "KEY=VALUE". The value may be empty or contain
// further '=' characters.
func ParseAssignment(s string) (EnvVar, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return EnvVar{}, util.Validationf("invalid format %q, expected KEY=VALUE", s)
	}
	ev := NewEnvVar(strings.TrimSpace(key), value)
	if err := ev.Validate(); err != nil {
		return EnvVar{}, err
	}
	return ev, nil
}

// String returns KEY=VALUE.
func (e EnvVar) String() string {
	return fmt.Sprintf("%s=%s", e.Key, e.Value)
}

// Redacted returns KEY=[REDACTED] for sensitive vars, otherwise String().
func (e EnvVar) Redacted() string {
	if e.Sensitive {
		return fmt.Sprintf("%s=[REDACTED]", e.Key)
	}
	return e.String()
}

// Validate checks the key against the POSIX naming rule.
func (e EnvVar) Validate() error {
	if !keyPattern.MatchString(e.Key) {
		return util.Validationf("invalid variable name %q: must match [a-zA-Z_][a-zA-Z0-9_]*", e.Key)
	}
	return nil
}

// IsSensitiveKey reports whether key looks like it holds a credential.
func IsSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
