// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the optional pyinit settings file.
//
// Settings live in ~/.pyinit/pyinit.yaml (or the file named by
// PYINIT_CONFIG). A missing file is not an error: every field has a
// default. A few fields can be overridden from the environment, which is
// handy in CI where no settings file exists.
package config

import (
	"runtime"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/depgraph"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
)

// Environment variables read by the loader.
const (
	EnvConfigPath   = "PYINIT_CONFIG"
	EnvPython       = "PYINIT_PYTHON"
	EnvVenvDir      = "PYINIT_VENV_DIR"
	EnvTemplatesDir = "PYINIT_TEMPLATES_DIR"
)

type PyinitConfig struct {
	// Python is the interpreter used to create virtual environments.
	Python string `yaml:"python" validate:"required"`

	// VenvDir is the venv directory name relative to the project root.
	VenvDir string `yaml:"venv_dir" validate:"required,excludesall=/\\"`

	// TemplatesDir, when set, is searched for templates before the
	// built-in ones.
	TemplatesDir string `yaml:"templates_dir,omitempty"`

	// DefaultTemplate is used by `new` when -t is not given.
	DefaultTemplate string `yaml:"default_template" validate:"required"`

	// Personality is the output level used when neither --personality nor
	// PYINIT_PERSONALITY is set.
	Personality string `yaml:"personality,omitempty" validate:"omitempty,oneof=full standard minimal machine"`

	Graph GraphConfig `yaml:"graph"`
	Clean CleanConfig `yaml:"clean"`
}

type GraphConfig struct {
	// Exclude is added to the scanner's default exclude globs.
	Exclude []string `yaml:"exclude,omitempty"`

	// TopLevel collapses dotted module names to their first segment.
	TopLevel bool `yaml:"top_level"`
}

type CleanConfig struct {
	// Patterns replaces the default clean globs when non-empty.
	Patterns []string `yaml:"patterns,omitempty"`
}

// DefaultPython is the interpreter name looked up on PATH.
func DefaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() PyinitConfig {
	return PyinitConfig{
		Python:          DefaultPython(),
		VenvDir:         project.DefaultVenvDir,
		DefaultTemplate: "app",
		Graph: GraphConfig{
			Exclude: []string{},
		},
		Clean: CleanConfig{},
	}
}

// ScanOptions converts the graph settings into scanner options.
func (c PyinitConfig) ScanOptions() depgraph.ScanOptions {
	exclude := append([]string{}, depgraph.DefaultExcludes...)
	if c.VenvDir != "" && c.VenvDir != project.DefaultVenvDir {
		exclude = append(exclude, c.VenvDir)
	}
	exclude = append(exclude, c.Graph.Exclude...)
	return depgraph.ScanOptions{
		Exclude:  exclude,
		TopLevel: c.Graph.TopLevel,
	}
}
