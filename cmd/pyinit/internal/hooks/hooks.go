// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package hooks sets up pre-commit git hooks for a project.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// ConfigFile is the pre-commit configuration file name.
const ConfigFile = ".pre-commit-config.yaml"

// Config mirrors the subset of .pre-commit-config.yaml that pyinit writes.
type Config struct {
	Repos []Repo `yaml:"repos"`
}

// Repo is one hook repository.
type Repo struct {
	Repo  string `yaml:"repo"`
	Rev   string `yaml:"rev"`
	Hooks []Hook `yaml:"hooks"`
}

// Hook is one hook id with optional overrides.
type Hook struct {
	ID   string   `yaml:"id"`
	Name string   `yaml:"name,omitempty"`
	Args []string `yaml:"args,omitempty,flow"`
}

// DefaultConfig returns the hook set pyinit installs: whitespace and YAML
// hygiene, ruff, black and isort.
func DefaultConfig() Config {
	return Config{Repos: []Repo{
		{
			Repo: "https://github.com/pre-commit/pre-commit-hooks",
			Rev:  "v4.6.0",
			Hooks: []Hook{
				{ID: "trailing-whitespace"},
				{ID: "end-of-file-fixer"},
				{ID: "check-yaml"},
				{ID: "check-added-large-files"},
			},
		},
		{
			Repo: "https://github.com/astral-sh/ruff-pre-commit",
			Rev:  "v0.4.4",
			Hooks: []Hook{
				{ID: "ruff", Args: []string{"--fix", "--exit-non-zero-on-fix"}},
				{ID: "ruff-format"},
			},
		},
		{
			Repo:  "https://github.com/psf/black",
			Rev:   "24.4.2",
			Hooks: []Hook{{ID: "black"}},
		},
		{
			Repo:  "https://github.com/pycqa/isort",
			Rev:   "5.13.2",
			Hooks: []Hook{{ID: "isort", Name: "isort (python)"}},
		},
	}}
}

// Marshal encodes cfg as YAML with two-space indentation.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Installer writes the config and installs the git hook.
type Installer struct {
	root   project.Root
	venv   project.Venv
	runner process.Runner
	python *toolchain.Python
}

// NewInstaller returns an Installer using the interpreter in venvDir.
func NewInstaller(root project.Root, venvDir string, runner process.Runner, python *toolchain.Python) *Installer {
	return &Installer{
		root:   root,
		venv:   project.NewVenv(root, venvDir),
		runner: runner,
		python: python,
	}
}

// ConfigPath returns the absolute config file path.
func (i *Installer) ConfigPath() string { return i.root.Join(ConfigFile) }

// ConfigExists reports whether a config file is already present.
func (i *Installer) ConfigExists() bool {
	_, err := os.Stat(i.ConfigPath())
	return err == nil
}

// Preflight checks that the project is a git repository with a venv.
func (i *Installer) Preflight() error {
	if !toolchain.NewGit(i.runner, i.root.Path()).IsRepo() {
		return util.Validationf("not a git repository, run 'git init' first")
	}
	if !i.venv.HasPython() {
		return util.NotFoundf("virtual environment %s, run 'pyinit venv create'", i.venv.Dir)
	}
	return nil
}

// EnsureTool installs pre-commit into the venv when missing and reports
// whether it did.
func (i *Installer) EnsureTool(ctx context.Context) (bool, error) {
	return i.python.EnsureModule(ctx, "pre_commit", "pre-commit")
}

// WriteConfig writes cfg, replacing any existing file.
func (i *Installer) WriteConfig(cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(i.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", i.ConfigPath(), err)
	}
	return nil
}

// Install runs `pre-commit install` in the project root.
func (i *Installer) Install(ctx context.Context) error {
	_, err := i.runner.Output(ctx, process.Cmd(i.venv.Bin("pre-commit"), "install").In(i.root.Path()))
	return err
}
