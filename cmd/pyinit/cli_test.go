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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/config"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/logging"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/telemetry"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
	"github.com/AleutianAI/pyinit/pkg/ux"
)

// =============================================================================
// Test Harness
// =============================================================================

type harness struct {
	out      bytes.Buffer
	errOut   bytes.Buffer
	runner   *process.MockRunner
	prompter *ux.MockPrompter
	env      map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		runner:   process.NewMockRunner(),
		prompter: &ux.MockPrompter{},
		env: map[string]string{
			config.EnvConfigPath: filepath.Join(t.TempDir(), "pyinit.yaml"),
		},
	}
}

// run executes pyinit with machine output and the harness doubles.
func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.errOut.Reset()
	return execute(context.Background(), append([]string{"--personality", "machine"}, args...), Env{
		Stdin:    strings.NewReader(""),
		Stdout:   &h.out,
		Stderr:   &h.errOut,
		Getenv:   func(k string) string { return h.env[k] },
		Runner:   h.runner,
		Prompter: h.prompter,
		Now:      func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
}

const fixturePyproject = `[project]
name = "demo"
version = "0.1.0"
description = "A demo project"
requires-python = ">=3.11"
dependencies = ["requests>=2"]
`

// writeProject creates a minimal src-layout project and returns its root.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), fixturePyproject)
	writeFile(t, filepath.Join(dir, "src", "demo", "__init__.py"), "")
	writeFile(t, filepath.Join(dir, "src", "demo", "main.py"),
		"import os\nfrom requests import get\n\n\ndef main():\n    print(os.getcwd(), get)\n")
	return dir
}

// writeVenv creates a fake venv interpreter under dir.
func writeVenv(t *testing.T, dir string) string {
	t.Helper()
	python := filepath.Join(dir, "venv", "bin", "python")
	writeFile(t, python, "")
	return python
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// Exit Code Tests
// =============================================================================

func TestExecute_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	code := h.run("frobnicate")

	assert.Equal(t, util.ExitBadArgs, code)
	assert.Contains(t, h.errOut.String(), "Error: unknown command")
	assert.Contains(t, h.errOut.String(), "Usage:")
}

func TestExecute_UnknownNestedCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"venv verb", []string{"venv", "bogus"}, `unknown command "bogus" for "pyinit venv"`},
		{"env verb", []string{"env", "frob"}, `unknown command "frob" for "pyinit env"`},
		{"license verb", []string{"license", "x"}, `unknown command "x" for "pyinit license"`},
		{"config verb", []string{"config", "zzz"}, `unknown command "zzz" for "pyinit config"`},
		{"bare group", []string{"venv"}, "pyinit venv requires a subcommand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			code := h.run(tt.args...)

			assert.Equal(t, util.ExitBadArgs, code)
			assert.Contains(t, h.errOut.String(), "Error: "+tt.want)
			assert.Contains(t, h.errOut.String(), "Usage:")
		})
	}
}

func TestExecute_UnknownFlag(t *testing.T) {
	h := newHarness(t)

	code := h.run("graph", "--no-such-flag")

	assert.Equal(t, util.ExitBadArgs, code)
	assert.Contains(t, h.errOut.String(), "unknown flag")
	assert.Contains(t, h.errOut.String(), "Usage:")
}

func TestExecute_WrongArgCount(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, util.ExitBadArgs, h.run("release"))
}

func TestExecute_NoProject(t *testing.T) {
	h := newHarness(t)

	code := h.run("-C", t.TempDir(), "graph")

	assert.Equal(t, util.ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "Error: operation failed: graph")
	assert.Contains(t, h.errOut.String(), "not found")
	assert.NotContains(t, h.errOut.String(), "Usage:")
}

func TestExecute_Version(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, util.ExitSuccess, h.run("--version"))
	assert.Contains(t, h.out.String(), version)
}

// =============================================================================
// Passthrough Tests
// =============================================================================

func TestSplitPassthrough(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantParsed []string
		wantRest   []string
	}{
		{"no verb", []string{"graph", "--top-level"}, []string{"graph", "--top-level"}, nil},
		{"bare test", []string{"test"}, []string{"test"}, []string{}},
		{"test args", []string{"test", "-k", "parser", "-x"}, []string{"test"}, []string{"-k", "parser", "-x"}},
		{"dash dash dropped", []string{"run", "--", "--port", "8080"}, []string{"run"}, []string{"--port", "8080"}},
		{"global flags first", []string{"-C", "/tmp/p", "-y", "check", "--fix"}, []string{"-C", "/tmp/p", "-y", "check"}, []string{"--fix"}},
		{"personality value", []string{"--personality", "machine", "run", "a"}, []string{"--personality", "machine", "run"}, []string{"a"}},
		{"verb as flag value", []string{"-C", "test"}, []string{"-C", "test"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, rest := splitPassthrough(tt.args)
			assert.Equal(t, tt.wantParsed, parsed)
			if len(tt.wantRest) == 0 {
				assert.Empty(t, rest)
			} else {
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}

func TestExecute_CheckPassesArgsToRuff(t *testing.T) {
	dir := writeProject(t)
	python := writeVenv(t, dir)
	h := newHarness(t)

	code := h.run("-C", dir, "check", "--fix", "src")

	require.Equal(t, util.ExitSuccess, code, h.errOut.String())
	assert.Equal(t, []string{
		python + " -c import ruff",
		python + " -m ruff check --fix src",
	}, h.runner.Lines())
}

// =============================================================================
// Dispatch Tests
// =============================================================================

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "venv create", CmdVenvCreate.String())
	assert.Equal(t, "env unset", CmdEnvUnset.String())
	assert.Equal(t, "Command(999)", Command(999).String())
}

func TestCommandNames_CoverEveryCommand(t *testing.T) {
	for c := CmdNew; c <= CmdConfigInit; c++ {
		_, ok := commandNames[c]
		assert.True(t, ok, "missing name for %d", int(c))
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	app := &App{
		Console: ux.NewConsole(&out, &out, ux.PersonalityMachine),
		Tracer:  telemetry.Noop().Tracer,
		Logger:  logging.Discard(),
	}

	err := app.Dispatch(context.Background(), Command(999), Invocation{})

	var usage *UsageError
	require.True(t, errors.As(err, &usage))
	assert.Contains(t, usage.Error(), "Command(999)")
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestExecute_Graph(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	code := h.run("-C", dir, "graph")

	require.Equal(t, util.ExitSuccess, code, h.errOut.String())
	assert.Contains(t, h.out.String(), "os")
	assert.Contains(t, h.out.String(), "requests")
	assert.Contains(t, h.out.String(), "main.py")
}

func TestExecute_GraphReportsSkippedFileOnce(t *testing.T) {
	dir := writeProject(t)
	writeFile(t, filepath.Join(dir, "src", "demo", "bad.py"), "im\xff\xfe\xfd\n")
	h := newHarness(t)

	code := h.run("-C", dir, "graph")

	require.Equal(t, util.ExitSuccess, code, h.errOut.String())
	assert.Equal(t, 1, strings.Count(h.errOut.String(), "src/demo/bad.py"), h.errOut.String())
	assert.NotContains(t, h.errOut.String(), "skipping file")
}

func TestExecute_GraphBadFormat(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	code := h.run("-C", dir, "graph", "--format", "xml")

	assert.Equal(t, util.ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "unknown graph format")
}

func TestExecute_AddRequiresVenv(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	code := h.run("-C", dir, "add", "httpx")

	assert.Equal(t, util.ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "virtual environment")
	assert.Empty(t, h.runner.Lines())
}

func TestExecute_AddInstallsWithVenvPip(t *testing.T) {
	dir := writeProject(t)
	python := writeVenv(t, dir)
	h := newHarness(t)

	code := h.run("-C", dir, "add", "httpx", "rich")

	require.Equal(t, util.ExitSuccess, code, h.errOut.String())
	assert.Equal(t, []string{python + " -m pip install httpx rich"}, h.runner.Lines())
	assert.Contains(t, h.out.String(), "OK: installed httpx, rich")
}

func TestExecute_TestWithoutTestsDir(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	code := h.run("-C", dir, "test")

	assert.Equal(t, util.ExitSuccess, code)
	assert.Contains(t, h.out.String(), "no tests directory")
	assert.Empty(t, h.runner.Lines())
}

func TestExecute_ReleaseDryRun(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	code := h.run("-C", dir, "release", "patch", "--dry-run")

	require.Equal(t, util.ExitSuccess, code, h.errOut.String())
	assert.Contains(t, h.out.String(), "0.1.0 -> 0.1.1")
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	require.NoError(t, err)
	assert.Equal(t, fixturePyproject, string(data))
}

func TestExecute_Release(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	require.Equal(t, util.ExitSuccess, h.run("-C", dir, "release", "minor"), h.errOut.String())

	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `version = "0.2.0"`)
}

func TestExecute_EnvSetAndList(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	require.Equal(t, util.ExitSuccess, h.run("-C", dir, "env", "set", "API_TOKEN=abc123", "DEBUG=1"), h.errOut.String())
	assert.Contains(t, h.out.String(), "added .env to .gitignore")

	require.Equal(t, util.ExitSuccess, h.run("-C", dir, "env", "list"))
	assert.Equal(t, "API_TOKEN=[REDACTED]\nDEBUG=1\n", h.out.String())

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), ".env")
}

func TestExecute_EnvSetRejectsBadAssignment(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	assert.Equal(t, util.ExitFailure, h.run("-C", dir, "env", "set", "NOEQUALS"))
	_, err := os.Stat(filepath.Join(dir, ".env"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_VenvRemove(t *testing.T) {
	tests := []struct {
		name     string
		answer   bool
		wantGone bool
	}{
		{"confirmed", true, true},
		{"declined", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t)
			writeVenv(t, dir)
			h := newHarness(t)
			h.prompter.ConfirmFunc = func(string) (bool, error) { return tt.answer, nil }

			require.Equal(t, util.ExitSuccess, h.run("-C", dir, "venv", "remove"), h.errOut.String())

			_, err := os.Stat(filepath.Join(dir, "venv"))
			assert.Equal(t, tt.wantGone, os.IsNotExist(err))
			assert.Len(t, h.prompter.Messages, 1)
		})
	}
}

func TestExecute_YesSkipsPrompt(t *testing.T) {
	dir := writeProject(t)
	writeVenv(t, dir)
	h := newHarness(t)

	require.Equal(t, util.ExitSuccess, h.run("-y", "-C", dir, "venv", "remove"))

	assert.Empty(t, h.prompter.Messages)
	assert.NoDirExists(t, filepath.Join(dir, "venv"))
}

func TestExecute_CleanRemovesCaches(t *testing.T) {
	dir := writeProject(t)
	writeFile(t, filepath.Join(dir, "src", "demo", "__pycache__", "main.cpython-312.pyc"), "x")
	writeFile(t, filepath.Join(dir, "venv", "lib", "__pycache__", "keep.pyc"), "x")
	h := newHarness(t)
	h.prompter.ConfirmFunc = func(string) (bool, error) { return true, nil }

	require.Equal(t, util.ExitSuccess, h.run("-C", dir, "clean"), h.errOut.String())

	assert.NoDirExists(t, filepath.Join(dir, "src", "demo", "__pycache__"))
	assert.DirExists(t, filepath.Join(dir, "venv", "lib", "__pycache__"))
	assert.Contains(t, h.out.String(), "- src/demo/__pycache__")
}

func TestExecute_ScanReportsChecks(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)

	code := h.run("-C", dir, "scan")

	assert.Equal(t, util.ExitSuccess, code)
	assert.Contains(t, h.out.String(), "PASS\tsrc layout")
	assert.Contains(t, h.out.String(), "FAIL\tvirtual environment 'venv'")
	assert.Contains(t, h.out.String(), "SUMMARY: passed=")
}

func TestExecute_LicenseSet(t *testing.T) {
	dir := writeProject(t)
	h := newHarness(t)
	h.runner.OutputFunc = func(_ context.Context, cmd process.Command) ([]byte, error) {
		if cmd.Name == "git" && strings.Contains(cmd.String(), "user.name") {
			return []byte("Ada Lovelace\n"), nil
		}
		return nil, nil
	}

	require.Equal(t, util.ExitSuccess, h.run("-C", dir, "license", "set", "mit"), h.errOut.String())

	text, err := os.ReadFile(filepath.Join(dir, "LICENSE"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Copyright (c) 2025 Ada Lovelace")
	py, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(py), `license = { text = "MIT" }`)
}

func TestExecute_ConfigInitAndShow(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, util.ExitSuccess, h.run("config", "init"), h.errOut.String())
	assert.FileExists(t, h.env[config.EnvConfigPath])

	assert.Equal(t, util.ExitFailure, h.run("config", "init"))

	require.Equal(t, util.ExitSuccess, h.run("config", "show"))
	assert.Contains(t, h.out.String(), "venv")
}

func TestExecute_AddRejectsOptionLikeArgs(t *testing.T) {
	dir := writeProject(t)
	writeVenv(t, dir)
	h := newHarness(t)

	code := h.run("-C", dir, "add", "requests;rm")

	assert.Equal(t, util.ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "invalid requirement")
	assert.Empty(t, h.runner.Lines())
}
