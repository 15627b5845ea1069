// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package process abstracts external tool execution for pyinit.

Every pyinit command is a thin layer over python, pip, git, black, ruff,
pytest or dot. All of those invocations go through [Runner] so handlers can
be tested with [MockRunner] instead of real processes.

Failures are always reported as *util.CommandError, which carries the
command line, the exit code and the captured stderr, and matches
util.ErrExternalTool. A missing executable is a CommandError with exit code
-1 wrapping exec.ErrNotFound.
*/
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// -----------------------------------------------------------------------------
// Command
// -----------------------------------------------------------------------------

// Command describes one external process invocation.
type Command struct {
	// Name is the executable name or path.
	Name string

	// Args are the command arguments.
	Args []string

	// Dir is the working directory; empty means the current one.
	Dir string

	// Env is appended to the inherited environment.
	Env []string

	// Stdin is connected to the process stdin when non-nil.
	Stdin io.Reader

	// Stdout and Stderr receive streamed output in Run. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// Cmd builds a Command for name with args.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// In returns a copy of c that runs in dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// WithInput returns a copy of c reading stdin from r.
func (c Command) WithInput(r io.Reader) Command {
	c.Stdin = r
	return c
}

// Streaming returns a copy of c that streams output to stdout and stderr.
func (c Command) Streaming(stdout, stderr io.Writer) Command {
	c.Stdout = stdout
	c.Stderr = stderr
	return c
}

// String returns the command line as the user would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// Runner executes external processes.
//
// # Context Handling
//
// All methods that start a process accept a context; cancelling it kills
// the process.
type Runner interface {
	// Output runs the command to completion and returns its stdout.
	//
	// # Outputs
	//
	//   - []byte: Captured stdout
	//   - error: *util.CommandError on non-zero exit or start failure
	//
	// # Examples
	//
	//	out, err := r.Output(ctx, process.Cmd("git", "config", "--get", "user.name"))
	Output(ctx context.Context, cmd Command) ([]byte, error)

	// Run runs the command to completion, streaming its output to
	// cmd.Stdout and cmd.Stderr.
	//
	// # Limitations
	//
	//   - Only the tail of stderr is kept for the returned error
	Run(ctx context.Context, cmd Command) error

	// LookPath resolves an executable on PATH.
	LookPath(name string) (string, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// stderrTailSize bounds how much streamed stderr is kept for error messages.
const stderrTailSize = 4096

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a Runner that executes real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Output runs cmd and returns its stdout.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	c := build(ctx, cmd)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return stdout.Bytes(), util.NewCommandError(cmd.String(), exitCode(err), stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// Run runs cmd streaming its output.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	c := build(ctx, cmd)

	tail := &tailBuffer{max: stderrTailSize}
	c.Stdout = orDiscard(cmd.Stdout)
	c.Stderr = io.MultiWriter(orDiscard(cmd.Stderr), tail)

	if err := c.Run(); err != nil {
		return util.NewCommandError(cmd.String(), exitCode(err), tail.String(), err)
	}
	return nil
}

// LookPath resolves name on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", util.NewCommandError(name, -1, "", err)
	}
	return path, nil
}

func build(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin
	return c
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

// Compile-time interface compliance check.
var _ Runner = (*ExecRunner)(nil)
