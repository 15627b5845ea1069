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
	"path/filepath"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/dockergen"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/hooks"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/license"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/release"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
)

// =============================================================================
// release
// =============================================================================

func (a *App) runRelease(_ context.Context, inv Invocation) error {
	part, err := release.ParsePart(inv.Args[0])
	if err != nil {
		return err
	}
	root, err := a.Root()
	if err != nil {
		return err
	}
	res, err := release.Release(root, part, inv.Release.DryRun)
	if err != nil {
		return err
	}
	if res.DryRun {
		a.Console.Info(fmt.Sprintf("would bump version %s -> %s (dry run, nothing written)", res.Old, res.New))
		return nil
	}
	a.Console.Success(fmt.Sprintf("bumped version %s -> %s", res.Old, res.New))
	a.Console.Tip(fmt.Sprintf("commit and tag: git commit -am 'Release v%s' && git tag v%s", res.New, res.New))
	return nil
}

// =============================================================================
// docker
// =============================================================================

func (a *App) runDocker(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	meta, err := project.LoadPyproject(root)
	if err != nil {
		return err
	}
	plan := dockergen.NewPlan(root, meta)

	if len(plan.Existing) > 0 {
		for _, path := range plan.Existing {
			a.Console.Warning(filepath.Base(path) + " already exists")
		}
		ok, err := a.Prompter.Confirm(ctx, "Overwrite existing Docker files?")
		if err != nil {
			return err
		}
		if !ok {
			a.Console.Info("cancelled")
			return nil
		}
	}

	a.Console.Step("Generating", fmt.Sprintf("Dockerfile for python %s", plan.Spec.PythonVersion))
	if err := plan.Write(); err != nil {
		return err
	}
	a.Console.Success("created " + dockergen.DockerfileName + " and " + dockergen.DockerignoreName)
	a.Console.Tip(fmt.Sprintf("docker build -t %s .", plan.Spec.Package))
	return nil
}

// =============================================================================
// license
// =============================================================================

func (a *App) runLicenseList(context.Context, Invocation) error {
	for _, l := range license.List() {
		a.Console.KeyValue(l.Key, l.SPDX)
	}
	return nil
}

func (a *App) runLicenseSet(ctx context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	holder, _ := toolchain.NewGit(a.Runner, root.Path()).Author(ctx)
	plan, err := license.NewPlan(root, inv.Args[0], a.Now().Year(), holder)
	if err != nil {
		return err
	}

	if plan.Existing {
		ok, err := a.Prompter.Confirm(ctx, license.FileName+" already exists. Overwrite?")
		if err != nil {
			return err
		}
		if !ok {
			a.Console.Info("cancelled")
			return nil
		}
	}
	if err := plan.Apply(); err != nil {
		return err
	}
	a.Console.Success(fmt.Sprintf("set license to %s", plan.License.SPDX))
	return nil
}

// =============================================================================
// hooks
// =============================================================================

func (a *App) runHooks(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	venv := a.Venv(root)
	py := toolchain.NewPython(a.Runner, venv.Python(), root.Path(), a.Console.Out(), a.Console.Err())
	inst := hooks.NewInstaller(root, a.Config.VenvDir, a.Runner, py)
	if err := inst.Preflight(); err != nil {
		return err
	}

	a.Console.Step("Checking", "pre-commit")
	if installed, err := inst.EnsureTool(ctx); err != nil {
		return err
	} else if installed {
		a.Console.Info("installed pre-commit into the virtual environment")
	}

	write := true
	if inst.ConfigExists() {
		ok, err := a.Prompter.Confirm(ctx, hooks.ConfigFile+" already exists. Overwrite?")
		if err != nil {
			return err
		}
		write = ok
	}
	if write {
		if err := inst.WriteConfig(hooks.DefaultConfig()); err != nil {
			return err
		}
		a.Console.Step("Writing", hooks.ConfigFile)
	}

	a.Console.Step("Installing", "git hook")
	if err := inst.Install(ctx); err != nil {
		return err
	}
	a.Console.Success("pre-commit hooks installed")
	return nil
}
