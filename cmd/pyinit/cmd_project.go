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

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/scaffold"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// =============================================================================
// new / init
// =============================================================================

func (a *App) runNew(ctx context.Context, inv Invocation) error {
	template := inv.New.Template
	if template == "" {
		template = a.Config.DefaultTemplate
	}
	res, err := a.Scaffolder().New(ctx, a.workDir, scaffold.NewOptions{
		Name:     inv.Args[0],
		Template: template,
		NoVenv:   inv.New.NoVenv,
		NoGit:    inv.New.NoGit,
	}, a.Progress)
	if err != nil {
		return err
	}

	a.Console.Success(fmt.Sprintf("created project '%s' from the %s template", inv.Args[0], res.Template))
	a.reportScaffold(res)
	a.Console.Tip(fmt.Sprintf("cd %s && pyinit run", inv.Args[0]))
	return nil
}

func (a *App) runInit(ctx context.Context, inv Invocation) error {
	res, err := a.Scaffolder().Init(ctx, a.workDir, scaffold.InitOptions{
		NoVenv: inv.Init.NoVenv,
		NoGit:  inv.Init.NoGit,
	}, a.Progress)
	if err != nil {
		return err
	}

	a.Console.Success(fmt.Sprintf("initialized project '%s'", res.Package))
	for _, m := range res.Migrated {
		a.Console.Bullet(fmt.Sprintf("moved %s to src/%s/", m, res.Package))
	}
	a.reportScaffold(res)
	return nil
}

func (a *App) reportScaffold(res *scaffold.Result) {
	a.Console.KeyValue("Package", res.Package)
	a.Console.KeyValue("Files", fmt.Sprintf("%d", len(res.Files)))
	a.Console.KeyValue("Virtualenv", yesNo(res.VenvCreated))
	a.Console.KeyValue("Git", yesNo(res.GitInitialized))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// =============================================================================
// run
// =============================================================================

func (a *App) runRun(ctx context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	py, err := a.Python(root)
	if err != nil {
		return err
	}
	entry, err := entryPoint(root)
	if err != nil {
		return err
	}

	a.Console.Step("Running", filepath.ToSlash(mustRel(root.Path(), entry)))
	return py.Script(ctx, a.Stdin, entry, inv.Args...)
}

// entryPoint returns src/<package>/main.py, taking the package name from
// pyproject.toml and falling back to the root directory name.
func entryPoint(root project.Root) (string, error) {
	meta, err := project.LoadPyproject(root)
	if err != nil {
		return "", err
	}
	pkg := meta.PackageName(root.Name())
	entry := root.Join("src", pkg, "main.py")
	if _, err := os.Stat(entry); err != nil {
		return "", util.NotFoundf("entry point %s", entry)
	}
	return entry, nil
}

func mustRel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

// =============================================================================
// venv
// =============================================================================

func (a *App) runVenvCreate(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	venv := a.Venv(root)
	if venv.Exists() {
		return util.Validationf("%s already exists (run 'pyinit venv remove' first to recreate it)", venv.Dir)
	}
	if _, err := a.Runner.LookPath(a.Config.Python); err != nil {
		return util.NewCommandError(a.Config.Python, -1, "", err)
	}

	a.Console.Step("Creating", "virtual environment "+a.Config.VenvDir)
	if err := toolchain.CreateVenv(ctx, a.Runner, a.Config.Python, root.Path(), a.Config.VenvDir,
		a.Console.Out(), a.Console.Err()); err != nil {
		return err
	}
	a.Console.Success("created virtual environment")
	return nil
}

func (a *App) runVenvRemove(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	venv := a.Venv(root)
	if !venv.Exists() {
		a.Console.Info(fmt.Sprintf("no %s directory to remove", a.Config.VenvDir))
		return nil
	}

	ok, err := a.Prompter.Confirm(ctx, fmt.Sprintf("Delete the virtual environment at %s?", venv.Dir))
	if err != nil {
		return err
	}
	if !ok {
		a.Console.Info("cancelled")
		return nil
	}
	a.Console.Step("Removing", venv.Dir)
	if err := os.RemoveAll(venv.Dir); err != nil {
		return util.Fail("remove virtual environment", venv.Dir, err)
	}
	a.Console.Success("removed virtual environment")
	return nil
}
