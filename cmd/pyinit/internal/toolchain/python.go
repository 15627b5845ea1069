// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package toolchain wraps the Python interpreter, pip and git behind small
// typed helpers built on process.Runner.
package toolchain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
)

// Python runs a specific interpreter inside a working directory.
type Python struct {
	runner process.Runner
	exe    string
	dir    string
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewPython returns a helper for the interpreter at exe. Streaming commands
// write to stdout and stderr.
func NewPython(runner process.Runner, exe, dir string, stdout, stderr io.Writer) *Python {
	return &Python{
		runner: runner,
		exe:    exe,
		dir:    dir,
		stdout: stdout,
		stderr: stderr,
		logger: slog.Default().With("component", "toolchain"),
	}
}

// Exe returns the interpreter path.
func (p *Python) Exe() string { return p.exe }

func (p *Python) cmd(args ...string) process.Command {
	return process.Cmd(p.exe, args...).In(p.dir)
}

// Module runs `python -m module args...` streaming its output.
func (p *Python) Module(ctx context.Context, module string, args ...string) error {
	return p.runner.Run(ctx, p.cmd(append([]string{"-m", module}, args...)...).Streaming(p.stdout, p.stderr))
}

// ModuleOutput runs `python -m module args...` and returns stdout.
func (p *Python) ModuleOutput(ctx context.Context, module string, args ...string) ([]byte, error) {
	return p.runner.Output(ctx, p.cmd(append([]string{"-m", module}, args...)...))
}

// Script runs a Python file with args, streaming its output and wiring
// stdin through.
func (p *Python) Script(ctx context.Context, stdin io.Reader, path string, args ...string) error {
	cmd := p.cmd(append([]string{path}, args...)...).WithInput(stdin).Streaming(p.stdout, p.stderr)
	return p.runner.Run(ctx, cmd)
}

// HasModule reports whether `import module` succeeds.
func (p *Python) HasModule(ctx context.Context, module string) bool {
	_, err := p.runner.Output(ctx, p.cmd("-c", "import "+module))
	return err == nil
}

// EnsureModule installs pkg with pip unless module is already importable.
// It reports whether an install happened.
func (p *Python) EnsureModule(ctx context.Context, module, pkg string) (bool, error) {
	if p.HasModule(ctx, module) {
		return false, nil
	}
	p.logger.Debug("installing missing module", "module", module, "package", pkg)
	if err := p.Pip(ctx, "install", pkg); err != nil {
		return false, fmt.Errorf("install %s: %w", pkg, err)
	}
	return true, nil
}

// Pip runs `python -m pip args...` streaming its output.
func (p *Python) Pip(ctx context.Context, args ...string) error {
	return p.Module(ctx, "pip", args...)
}

// PipOutput runs `python -m pip args...` and returns stdout.
func (p *Python) PipOutput(ctx context.Context, args ...string) ([]byte, error) {
	return p.ModuleOutput(ctx, "pip", args...)
}

// Version returns the interpreter version, e.g. "3.12.1".
func (p *Python) Version(ctx context.Context) (string, error) {
	out, err := p.runner.Output(ctx, p.cmd("--version"))
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "Python "), nil
}

// Freeze returns `pip freeze` output as requirement lines.
func (p *Python) Freeze(ctx context.Context) ([]string, error) {
	out, err := p.PipOutput(ctx, "freeze")
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// InstalledCount returns the number of packages `pip list` reports.
func (p *Python) InstalledCount(ctx context.Context) (int, error) {
	out, err := p.PipOutput(ctx, "list", "--format=freeze")
	if err != nil {
		return 0, err
	}
	return len(nonEmptyLines(out)), nil
}

// CreateVenv runs `python -m venv dir` with the base interpreter.
func CreateVenv(ctx context.Context, runner process.Runner, basePython, workDir, venvDir string, stdout, stderr io.Writer) error {
	cmd := process.Cmd(basePython, "-m", "venv", venvDir).In(workDir).Streaming(stdout, stderr)
	return runner.Run(ctx, cmd)
}

func nonEmptyLines(out []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
