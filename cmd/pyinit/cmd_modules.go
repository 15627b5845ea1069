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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
	"github.com/AleutianAI/pyinit/pkg/validation"
)

// =============================================================================
// add / remove
// =============================================================================

func (a *App) runAdd(ctx context.Context, inv Invocation) error {
	if err := checkRequirements(inv.Args); err != nil {
		return err
	}
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}

	a.Console.Step("Installing", strings.Join(inv.Args, ", "))
	if err := py.Pip(ctx, append([]string{"install"}, inv.Args...)...); err != nil {
		return err
	}
	a.Console.Success(fmt.Sprintf("installed %s", strings.Join(inv.Args, ", ")))
	a.Console.Tip("add them to [project].dependencies and run 'pyinit lock'")
	return nil
}

func (a *App) runRemove(ctx context.Context, inv Invocation) error {
	if err := checkRequirements(inv.Args); err != nil {
		return err
	}
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}

	a.Console.Step("Uninstalling", strings.Join(inv.Args, ", "))
	if err := py.Pip(ctx, append([]string{"uninstall", "-y"}, inv.Args...)...); err != nil {
		return err
	}
	a.Console.Success(fmt.Sprintf("uninstalled %s", strings.Join(inv.Args, ", ")))
	return nil
}

// checkRequirements rejects arguments pip would read as options or URLs.
func checkRequirements(reqs []string) error {
	if err := validation.ValidateRequirements(reqs); err != nil {
		return fmt.Errorf("%w: %w", util.ErrValidation, err)
	}
	return nil
}

// =============================================================================
// update / lock
// =============================================================================

func (a *App) runUpdate(ctx context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}

	if !inv.Update.Upgrade {
		a.Console.Step("Checking", "for outdated modules")
		var out []byte
		err := a.Console.WithSpinner("querying the package index", func() (err error) {
			out, err = py.PipOutput(ctx, "list", "--outdated")
			return err
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(out)) == "" {
			a.Console.Success("all modules are up to date")
			return nil
		}
		a.Console.Printf("%s", out)
		a.Console.Tip("run 'pyinit update --upgrade' to upgrade the declared dependencies")
		return nil
	}

	meta, err := project.LoadPyproject(root)
	if err != nil {
		return err
	}
	deps := meta.DependencyNames()
	if len(deps) == 0 {
		a.Console.Info("no dependencies declared in pyproject.toml")
		return nil
	}
	a.Console.Step("Upgrading", fmt.Sprintf("%d declared dependencies", len(deps)))
	if err := py.Pip(ctx, append([]string{"install", "--upgrade"}, deps...)...); err != nil {
		return err
	}
	a.Console.Success("upgraded project dependencies")
	return nil
}

func (a *App) runLock(ctx context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}

	out := inv.Lock.Output
	if out == "" {
		out = "requirements.txt"
	}
	path := out
	if !filepath.IsAbs(out) {
		path = root.Join(out)
	}

	a.Console.Step("Locking", "installed modules")
	lines, err := py.Freeze(ctx)
	if err != nil {
		return err
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return util.Fail("write lock file", path, err)
	}
	a.Console.Success(fmt.Sprintf("wrote %d requirements to %s", len(lines), out))
	return nil
}

// =============================================================================
// build / test / check / format
// =============================================================================

func (a *App) runBuild(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}
	if err := a.ensureModule(ctx, py, "build", "build"); err != nil {
		return err
	}

	a.Console.Step("Building", "sdist and wheel")
	if err := py.Module(ctx, "build"); err != nil {
		return err
	}
	a.Console.Success("build artifacts written to dist/")
	return nil
}

func (a *App) runTest(ctx context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	if !isDir(root.Join("tests")) {
		a.Console.Info("no tests directory, nothing to run")
		return nil
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}
	if err := a.ensureModule(ctx, py, "pytest", "pytest"); err != nil {
		return err
	}

	a.Console.Step("Testing", root.Name())
	return py.Module(ctx, "pytest", inv.Args...)
}

func (a *App) runCheck(ctx context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}
	if err := a.ensureModule(ctx, py, "ruff", "ruff"); err != nil {
		return err
	}

	args := inv.Args
	if len(args) == 0 {
		args = sourceTargets(root)
		if len(args) == 0 {
			a.Console.Info("no src or tests directory to check")
			return nil
		}
	}
	a.Console.Step("Linting", strings.Join(args, " "))
	if err := py.Module(ctx, "ruff", append([]string{"check"}, args...)...); err != nil {
		return err
	}
	a.Console.Success("no lint problems found")
	return nil
}

func (a *App) runFormat(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	targets := sourceTargets(root)
	if len(targets) == 0 {
		a.Console.Info("no src or tests directory to format")
		return nil
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}
	for _, tool := range []string{"isort", "black"} {
		if err := a.ensureModule(ctx, py, tool, tool); err != nil {
			return err
		}
	}

	a.Console.Step("Sorting", "imports with isort")
	if err := py.Module(ctx, "isort", targets...); err != nil {
		return err
	}
	a.Console.Step("Formatting", "code with black")
	if err := py.Module(ctx, "black", targets...); err != nil {
		return err
	}
	a.Console.Success("formatted " + strings.Join(targets, ", "))
	return nil
}

// ensureModule installs a tool into the venv on first use.
func (a *App) ensureModule(ctx context.Context, py *toolchain.Python, module, pkg string) error {
	if py.HasModule(ctx, module) {
		return nil
	}
	a.Console.Step("Installing", "required module "+pkg)
	return py.Pip(ctx, "install", pkg)
}

// sourceTargets returns the relative src and tests directories that exist.
func sourceTargets(root project.Root) []string {
	var out []string
	for _, d := range []string{"src", "tests"} {
		if isDir(root.Join(d)) {
			out = append(out, d)
		}
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
