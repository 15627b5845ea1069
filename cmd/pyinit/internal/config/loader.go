// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// DefaultPath returns $PYINIT_CONFIG, or ~/.pyinit/pyinit.yaml.
func DefaultPath(getenv Getenv) (string, error) {
	if p := getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".pyinit", "pyinit.yaml"), nil
}

// Load reads the settings file at path, applies environment overrides and
// validates the result.
//
// # Description
//
// A missing file yields DefaultConfig. Fields absent from the file keep
// their defaults. Overrides from PYINIT_PYTHON, PYINIT_VENV_DIR and
// PYINIT_TEMPLATES_DIR win over the file.
//
// # Outputs
//
// Errors from malformed YAML or failed validation satisfy
// errors.Is(err, util.ErrValidation).
func Load(path string, getenv Getenv) (PyinitConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return cfg, fmt.Errorf("failed to read the config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, util.Validationf("config file %s: %v", path, err)
		}
	}

	applyEnv(&cfg, getenv)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *PyinitConfig, getenv Getenv) {
	if v := strings.TrimSpace(getenv(EnvPython)); v != "" {
		cfg.Python = v
	}
	if v := strings.TrimSpace(getenv(EnvVenvDir)); v != "" {
		cfg.VenvDir = v
	}
	if v := strings.TrimSpace(getenv(EnvTemplatesDir)); v != "" {
		cfg.TemplatesDir = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first failure by its
// YAML field path.
func Validate(cfg PyinitConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return util.Validationf("invalid value %q for %s (rule %s)", fmt.Sprint(fe.Value()), yamlPath(fe.Namespace()), fe.Tag())
	}
	return util.Validationf("%v", err)
}

// yamlPath turns "PyinitConfig.VenvDir" into "venv_dir".
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WriteDefault creates the settings file with default values. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", util.ErrValidation, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg PyinitConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal the config: %w", err)
	}
	return data, nil
}
