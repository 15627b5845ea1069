// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package doctor runs the project health checks behind `pyinit scan`.
package doctor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
)

// Severity says how bad a failed check is.
type Severity string

const (
	// SeverityError marks a check whose failure breaks the workflow.
	SeverityError Severity = "error"

	// SeverityWarning marks a check whose failure is a deviation from the
	// standard layout.
	SeverityWarning Severity = "warning"
)

// State is the outcome of one check.
type State string

const (
	StatePass State = "pass"
	StateWarn State = "warn"
	StateFail State = "fail"
)

// Check is one health check.
//
// # Description
//
// Run returns nil when the project passes. Otherwise the returned error
// text becomes the issue shown in the summary. Suggestion is printed
// under the issue.
type Check struct {
	Name       string
	Severity   Severity
	Suggestion string
	Run        func(ctx context.Context) error
}

// Result is the outcome of running one Check.
type Result struct {
	Name       string
	State      State
	Issue      string
	Suggestion string
}

// Report is the outcome of a full scan.
type Report struct {
	Root    string
	Results []Result
}

// Passed returns the number of passing checks.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.State == StatePass {
			n++
		}
	}
	return n
}

// Total returns the number of checks run.
func (r *Report) Total() int { return len(r.Results) }

// Healthy reports whether no check failed with SeverityError.
func (r *Report) Healthy() bool {
	for _, res := range r.Results {
		if res.State == StateFail {
			return false
		}
	}
	return true
}

// Issues returns the results that did not pass.
func (r *Report) Issues() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State != StatePass {
			out = append(out, res)
		}
	}
	return out
}

// =============================================================================
// Doctor
// =============================================================================

// Doctor inspects one project.
type Doctor struct {
	root    project.Root
	venv    project.Venv
	runner  process.Runner
	logger  *slog.Logger
	checks  []Check
	observe func(Result)
}

// New returns a Doctor with the default checks, in display order:
// pyproject validity, src layout, venv, dependency sync, git, .gitignore
// and tests.
func New(root project.Root, venvDir string, runner process.Runner, logger *slog.Logger) *Doctor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Doctor{
		root:   root,
		venv:   project.NewVenv(root, venvDir),
		runner: runner,
		logger: logger.With("component", "doctor"),
	}
	venvName := d.relVenv()
	d.checks = []Check{
		{Name: "pyproject.toml validity", Severity: SeverityError, Run: d.checkPyproject},
		{Name: "src layout", Severity: SeverityWarning, Run: d.checkSrc},
		{
			Name:       fmt.Sprintf("virtual environment '%s'", venvName),
			Severity:   SeverityError,
			Suggestion: "run 'pyinit venv create'",
			Run:        d.checkVenv,
		},
		{
			Name:       "dependency synchronization",
			Severity:   SeverityError,
			Suggestion: "install them with 'pyinit add <module>'",
			Run:        d.checkDepsSynced,
		},
		{Name: "git repository", Severity: SeverityWarning, Suggestion: "run 'git init'", Run: d.checkGit},
		{Name: ".gitignore", Severity: SeverityWarning, Run: d.checkGitignore},
		{Name: "tests directory", Severity: SeverityWarning, Run: d.checkTests},
	}
	return d
}

// OnResult registers a callback invoked after each check, so callers can
// print progress as the scan runs.
func (d *Doctor) OnResult(fn func(Result)) { d.observe = fn }

// Checks returns the configured checks.
func (d *Doctor) Checks() []Check { return d.checks }

// Run executes every check in order. It only returns an error when ctx is
// cancelled; failing checks are reported in the Report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{Root: d.root.Path()}
	for _, c := range d.checks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := Result{Name: c.Name, State: StatePass}
		if err := c.Run(ctx); err != nil {
			res.Issue = err.Error()
			res.Suggestion = c.Suggestion
			res.State = StateWarn
			if c.Severity == SeverityError {
				res.State = StateFail
			}
		}
		d.logger.Debug("check finished", "check", c.Name, "state", res.State)
		report.Results = append(report.Results, res)
		if d.observe != nil {
			d.observe(res)
		}
	}
	return report, nil
}

// =============================================================================
// Checks
// =============================================================================

func (d *Doctor) checkPyproject(context.Context) error {
	if _, err := project.LoadPyproject(d.root); err != nil {
		return fmt.Errorf("pyproject.toml is malformed and cannot be read")
	}
	return nil
}

func (d *Doctor) checkSrc(context.Context) error {
	if !isDir(d.root.Join("src")) {
		return fmt.Errorf("standard 'src' directory is missing")
	}
	return nil
}

func (d *Doctor) checkVenv(context.Context) error {
	if !d.venv.Exists() {
		return fmt.Errorf("'%s' not found, dependencies are not isolated", d.relVenv())
	}
	return nil
}

func (d *Doctor) checkDepsSynced(ctx context.Context) error {
	if !d.venv.Exists() {
		return fmt.Errorf("cannot check dependencies because '%s' is missing", d.relVenv())
	}
	py, err := project.LoadPyproject(d.root)
	if err != nil {
		return fmt.Errorf("cannot read declared dependencies")
	}
	lines, err := toolchain.NewPython(d.runner, d.venv.Python(), d.root.Path(), nil, nil).Freeze(ctx)
	if err != nil {
		d.logger.Debug("pip freeze failed", "error", err)
		return fmt.Errorf("could not list installed packages from '%s'", d.relVenv())
	}
	missing := MissingDependencies(py.DependencyNames(), lines)
	if len(missing) > 0 {
		return fmt.Errorf("declared in pyproject.toml but not installed: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (d *Doctor) checkGit(context.Context) error {
	if !isDir(d.root.Join(".git")) {
		return fmt.Errorf("project is not a git repository")
	}
	return nil
}

func (d *Doctor) checkGitignore(context.Context) error {
	info, err := os.Stat(d.root.Join(project.GitignoreFile))
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("'.gitignore' file is missing")
	}
	return nil
}

func (d *Doctor) checkTests(context.Context) error {
	if !isDir(d.root.Join("tests")) {
		return fmt.Errorf("'tests' directory not found")
	}
	return nil
}

func (d *Doctor) relVenv() string {
	rel := strings.TrimPrefix(d.venv.Dir, d.root.Path())
	return strings.TrimLeft(rel, `/\`)
}

// MissingDependencies returns the declared names that have no match in
// freeze output. Names are compared after project.NormalizeName.
func MissingDependencies(declared, freezeLines []string) []string {
	installed := make(map[string]bool, len(freezeLines))
	for _, line := range freezeLines {
		if name := freezeName(line); name != "" {
			installed[project.NormalizeName(name)] = true
		}
	}
	var missing []string
	for _, dep := range declared {
		if !installed[project.NormalizeName(dep)] {
			missing = append(missing, dep)
		}
	}
	sort.Strings(missing)
	return missing
}

// freezeName extracts the distribution name from one `pip freeze` line:
// "name==1.0" or "name @ url". Editable and comment lines yield "".
func freezeName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return ""
	}
	if name, _, ok := strings.Cut(line, "=="); ok {
		return strings.TrimSpace(name)
	}
	if name, _, ok := strings.Cut(line, " @ "); ok {
		return strings.TrimSpace(name)
	}
	return project.RequirementName(line)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
