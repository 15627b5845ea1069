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
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/cleaner"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/doctor"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/info"
	"github.com/AleutianAI/pyinit/pkg/ux"
)

// =============================================================================
// scan
// =============================================================================

// runScan prints one line per health check and a summary. Failed checks
// are reported, not returned as an error.
func (a *App) runScan(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}

	a.Console.Step("Scanning", root.Path())
	d := doctor.New(root, a.Config.VenvDir, a.Runner, a.Logger)
	d.OnResult(func(r doctor.Result) {
		a.Console.Check(stateIcon(r.State), r.Name, r.Issue)
	})

	report, err := d.Run(ctx)
	if err != nil {
		return err
	}
	a.Console.Summary(report.Passed(), report.Total())

	for _, issue := range report.Issues() {
		if issue.Suggestion != "" {
			a.Console.Tip(fmt.Sprintf("%s: %s", issue.Name, issue.Suggestion))
		}
	}
	return nil
}

func stateIcon(s doctor.State) ux.Icon {
	switch s {
	case doctor.StatePass:
		return ux.IconSuccess
	case doctor.StateWarn:
		return ux.IconWarning
	default:
		return ux.IconError
	}
}

// =============================================================================
// info
// =============================================================================

func (a *App) runInfo(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	var in *info.Info
	err = a.Console.WithSpinner("collecting project information", func() (err error) {
		in, err = info.NewCollector(a.Runner, a.Config.VenvDir, a.Logger).Collect(ctx, root)
		return err
	})
	if err != nil {
		return err
	}

	a.Console.Title(orNA(in.Name))
	a.Console.KeyValue("Version", orNA(in.Version))
	a.Console.KeyValue("Description", orNA(in.Description))
	a.Console.KeyValue("Authors", orNA(strings.Join(in.Authors, ", ")))
	a.Console.KeyValue("License", orNA(in.License))
	a.Console.KeyValue("Python required", orNA(in.RequiresPython))
	a.Console.KeyValue("Path", in.Path)

	if in.Venv != nil {
		a.Console.KeyValue("Venv Python", orNA(in.Venv.Python))
		a.Console.KeyValue("Venv packages", fmt.Sprintf("%d installed", in.Venv.Packages))
	} else {
		a.Console.KeyValue("Venv", "N/A")
	}

	a.Console.KeyValue("Files (src)", fmt.Sprintf("%d", in.Stats.Files))
	a.Console.KeyValue("Lines (src)", fmt.Sprintf("%d", in.Stats.Lines))
	if !in.Stats.LastModified.IsZero() {
		a.Console.KeyValue("Last modified", in.Stats.LastModified.Format("2006-01-02 15:04:05"))
	}

	if in.Git == nil {
		a.Console.KeyValue("Git", "not a repository")
		return nil
	}
	a.Console.KeyValue("Branch", in.Git.Branch)
	a.Console.KeyValue("Last commit", orNA(in.Git.LastCommit))
	status := "clean"
	if !in.Git.Clean {
		status = "dirty (uncommitted changes)"
	}
	a.Console.KeyValue("Status", status)
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// =============================================================================
// clean
// =============================================================================

func (a *App) runClean(ctx context.Context, _ Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	c, err := cleaner.New(root, a.Config.Clean.Patterns, []string{a.Config.VenvDir}, a.Logger)
	if err != nil {
		return err
	}

	a.Console.Step("Searching", "for caches and build artifacts")
	targets, err := c.Find(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		a.Console.Success("project is already clean")
		return nil
	}

	a.Console.Info("the following will be permanently removed:")
	for _, t := range targets {
		a.Console.Bullet(t.Rel)
	}
	ok, err := a.Prompter.Confirm(ctx, fmt.Sprintf("Remove %d items?", len(targets)))
	if err != nil {
		return err
	}
	if !ok {
		a.Console.Info("cancelled")
		return nil
	}

	res := cleaner.Remove(targets)
	for _, failure := range res.Failed {
		a.Console.Warning(failure.Error())
	}
	a.Console.Success(fmt.Sprintf("removed %d items", res.Removed))
	return nil
}
