// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

const healthyPyproject = `[project]
name = "demo"
version = "0.1.0"
dependencies = ["requests>=2.31", "PyYAML"]
`

// healthyProject builds a project that passes every check.
func healthyProject(t *testing.T) project.Root {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(healthyPyproject), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("venv/\n"), 0o644))
	for _, d := range []string{"src", "tests", ".git", "venv"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}
	root, err := project.NewRoot(dir)
	require.NoError(t, err)
	return root
}

func freezeRunner(freeze string, err error) *process.MockRunner {
	m := process.NewMockRunner()
	m.OutputFunc = func(_ context.Context, cmd process.Command) ([]byte, error) {
		if strings.Contains(cmd.String(), "pip freeze") {
			return []byte(freeze), err
		}
		return nil, nil
	}
	return m
}

func TestDoctor_AllPass(t *testing.T) {
	root := healthyProject(t)
	runner := freezeRunner("requests==2.31.0\npyyaml==6.0.1\n", nil)

	var seen []string
	d := New(root, "venv", runner, nil)
	d.OnResult(func(r Result) { seen = append(seen, r.Name) })

	report, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, report.Total())
	assert.Equal(t, 7, report.Passed())
	assert.True(t, report.Healthy())
	assert.Empty(t, report.Issues())
	assert.Len(t, seen, 7)
	assert.Equal(t, "pyproject.toml validity", seen[0])
}

func TestDoctor_MissingPieces(t *testing.T) {
	root := healthyProject(t)
	require.NoError(t, os.RemoveAll(root.Join("tests")))
	require.NoError(t, os.RemoveAll(root.Join("venv")))
	require.NoError(t, os.Remove(root.Join(".gitignore")))

	report, err := New(root, "venv", process.NewMockRunner(), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Passed())
	assert.False(t, report.Healthy())

	states := map[string]State{}
	for _, r := range report.Results {
		states[r.Name] = r.State
	}
	assert.Equal(t, StateFail, states["virtual environment 'venv'"])
	assert.Equal(t, StateFail, states["dependency synchronization"])
	assert.Equal(t, StateWarn, states[".gitignore"])
	assert.Equal(t, StateWarn, states["tests directory"])

	for _, issue := range report.Issues() {
		if issue.Name == "virtual environment 'venv'" {
			assert.Equal(t, "run 'pyinit venv create'", issue.Suggestion)
		}
	}
}

func TestDoctor_DependenciesOutOfSync(t *testing.T) {
	root := healthyProject(t)
	report, err := New(root, "venv", freezeRunner("requests==2.31.0\n", nil), nil).Run(context.Background())
	require.NoError(t, err)

	issues := report.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "dependency synchronization", issues[0].Name)
	assert.Contains(t, issues[0].Issue, "PyYAML")
}

func TestDoctor_FreezeFails(t *testing.T) {
	root := healthyProject(t)
	runner := freezeRunner("", util.NewCommandError("pip freeze", 1, "boom", nil))

	report, err := New(root, "venv", runner, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Issues(), 1)
	assert.Contains(t, report.Issues()[0].Issue, "could not list installed packages")
}

func TestDoctor_MalformedPyproject(t *testing.T) {
	root := healthyProject(t)
	require.NoError(t, os.WriteFile(root.PyprojectPath(), []byte("[project\nname="), 0o644))

	report, err := New(root, "venv", freezeRunner("", nil), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateFail, report.Results[0].State)
}

func TestDoctor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(healthyProject(t), "venv", process.NewMockRunner(), nil).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMissingDependencies(t *testing.T) {
	freeze := []string{
		"Flask==3.0.0",
		"typing_extensions==4.9.0",
		"mypkg @ file:///tmp/mypkg",
		"-e git+https://example.com/repo.git#egg=editable",
		"# comment",
	}
	declared := []string{"flask", "typing-extensions", "mypkg", "zope.interface", "Requests"}

	assert.Equal(t, []string{"Requests", "zope.interface"}, MissingDependencies(declared, freeze))
}
