// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/config"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/scaffold"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
	"github.com/AleutianAI/pyinit/pkg/ux"
)

// Env is the process environment the CLI runs in. Tests replace every
// field; nil Runner and Prompter select the real implementations.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv config.Getenv

	Runner   process.Runner
	Prompter ux.Prompter
	Now      func() time.Time
}

// App carries everything a command handler needs. One App is built per
// invocation after global flags are parsed.
type App struct {
	Console  *ux.Console
	Prompter ux.Prompter
	Runner   process.Runner
	Config   config.PyinitConfig
	Logger   *slog.Logger
	Tracer   trace.Tracer

	Stdin      io.Reader
	Getenv     config.Getenv
	ConfigPath string

	workDir string
	now     func() time.Time
}

// WorkDir returns the directory the command runs in (-C or the process
// working directory).
func (a *App) WorkDir() string { return a.workDir }

// Root locates the project containing the working directory.
func (a *App) Root() (project.Root, error) {
	return project.FindRoot(a.workDir)
}

// Venv returns the configured venv of root.
func (a *App) Venv(root project.Root) project.Venv {
	return project.NewVenv(root, a.Config.VenvDir)
}

// RequireVenv returns the venv of root, failing with ErrNotFound when its
// interpreter is missing.
func (a *App) RequireVenv(root project.Root) (project.Venv, error) {
	venv := a.Venv(root)
	if !venv.HasPython() {
		return venv, util.NotFoundf("virtual environment %s (run 'pyinit venv create')", venv.Dir)
	}
	return venv, nil
}

// Python returns a helper for the venv interpreter of root that streams to
// the console.
func (a *App) Python(root project.Root) (*toolchain.Python, error) {
	venv, err := a.RequireVenv(root)
	if err != nil {
		return nil, err
	}
	return toolchain.NewPython(a.Runner, venv.Python(), root.Path(), a.Console.Out(), a.Console.Err()), nil
}

// Scaffolder returns a Scaffolder configured from the settings file.
func (a *App) Scaffolder() *scaffold.Scaffolder {
	return scaffold.NewScaffolder(scaffold.Config{
		Catalog: scaffold.NewCatalog(a.Config.TemplatesDir),
		Runner:  a.Runner,
		Python:  a.Config.Python,
		VenvDir: a.Config.VenvDir,
		Stdout:  a.Console.Out(),
		Stderr:  a.Console.Err(),
		Logger:  a.Logger,
		Now:     a.now,
	})
}

// Progress prints one scaffolding step.
func (a *App) Progress(verb, text string) {
	a.Console.Step(verb, text)
}

// Now returns the current time.
func (a *App) Now() time.Time { return a.now() }

// resolvePath makes p absolute relative to the working directory.
func (a *App) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.workDir, p)
}

func workingDir(flag string) (string, error) {
	if flag == "" {
		return os.Getwd()
	}
	return filepath.Abs(flag)
}
