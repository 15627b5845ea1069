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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/depgraph"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/scaffold"
)

// =============================================================================
// COMMAND TREE
// =============================================================================

// newRootCmd builds the full command tree for one execution.
func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pyinit",
		Short: "Create and manage Python projects",
		Long: `pyinit scaffolds Python projects and wraps the everyday tooling around
them: virtual environments, pip, pytest, ruff, black, isort, git and graphviz.

Commands that work on an existing project look for pyproject.toml in the
current directory (or the one given with -C) and its parents.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.cwd, "cwd", "C", "", "Run as if started in this directory")
	pf.BoolVarP(&c.flags.yes, "yes", "y", false, "Answer yes to every confirmation")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "Print debug logs to stderr")
	pf.StringVar(&c.flags.personality, "personality", "",
		"Output style: full, standard, minimal, machine")
	pf.BoolVar(&c.flags.trace, "trace", false, "Print OpenTelemetry spans and metrics to stderr")

	root.AddCommand(
		c.newNewCmd(),
		c.newInitCmd(),
		c.newPassthroughCmd("run", CmdRun, "Run src/<package>/main.py in the venv",
			"  pyinit run\n  pyinit run -- --port 8080"),
		c.newAddCmd(),
		c.newRemoveCmd(),
		c.newUpdateCmd(),
		c.newLockCmd(),
		c.newSimpleCmd("build", CmdBuild, "Build sdist and wheel with python -m build"),
		c.newPassthroughCmd("test", CmdTest, "Run pytest in the venv",
			"  pyinit test\n  pyinit test -k parser -x"),
		c.newPassthroughCmd("check", CmdCheck, "Lint with ruff (src and tests by default)",
			"  pyinit check\n  pyinit check src/pkg --fix"),
		c.newSimpleCmd("format", CmdFormat, "Format src and tests with isort and black"),
		c.newVenvCmd(),
		c.newGraphCmd(),
		c.newSimpleCmd("scan", CmdScan, "Check the project for common problems"),
		c.newSimpleCmd("info", CmdInfo, "Show project metadata and statistics"),
		c.newSimpleCmd("clean", CmdClean, "Remove caches and build artifacts"),
		c.newReleaseCmd(),
		c.newSimpleCmd("docker", CmdDocker, "Generate a Dockerfile and .dockerignore"),
		c.newEnvCmd(),
		c.newLicenseCmd(),
		c.newSimpleCmd("hooks", CmdHooks, "Install pre-commit git hooks"),
		c.newConfigCmd(),
	)
	return root
}

func (c *cli) newSimpleCmd(use string, command Command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE:  c.dispatch(command, nil),
	}
}

func (c *cli) newPassthroughCmd(use string, command Command, short, example string) *cobra.Command {
	return &cobra.Command{
		Use:     use + " [ARGS...]",
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.passthroughArgs(command),
	}
}

// -----------------------------------------------------------------------------
// Project creation
// -----------------------------------------------------------------------------

func (c *cli) newNewCmd() *cobra.Command {
	var f NewFlags
	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a new project from a template",
		Long: `Create ./NAME from a template, then set up git and a virtual environment.

Templates: ` + strings.Join(scaffold.NewCatalog("").Names(), ", ") + `

If any step fails the new folder is removed again.`,
		Example: "  pyinit new my-app\n  pyinit new tool -t cli --no-venv",
		Args:    cobra.ExactArgs(1),
		RunE: c.dispatch(CmdNew, func(args []string) Invocation {
			return Invocation{Args: args, New: f}
		}),
	}
	cmd.Flags().StringVarP(&f.Template, "template", "t", "", "Template name (default from settings, normally app)")
	cmd.Flags().BoolVar(&f.NoVenv, "no-venv", false, "Skip creating the virtual environment")
	cmd.Flags().BoolVar(&f.NoGit, "no-git", false, "Skip git init")
	return cmd
}

func (c *cli) newInitCmd() *cobra.Command {
	var f InitFlags
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Turn the current directory into a project",
		Long: `Convert the current directory into a src-layout project.

Loose *.py files are moved into src/<package>/. Existing files are never
overwritten. The directory must not already contain pyproject.toml, src or
the venv directory.`,
		Args: cobra.NoArgs,
		RunE: c.dispatch(CmdInit, func(args []string) Invocation {
			return Invocation{Args: args, Init: f}
		}),
	}
	cmd.Flags().BoolVar(&f.NoVenv, "no-venv", false, "Skip creating the virtual environment")
	cmd.Flags().BoolVar(&f.NoGit, "no-git", false, "Skip git init")
	return cmd
}

// -----------------------------------------------------------------------------
// Dependencies
// -----------------------------------------------------------------------------

func (c *cli) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add MODULE...",
		Aliases: []string{"install"},
		Short:   "Install modules into the venv",
		Example: "  pyinit add requests\n  pyinit add 'django>=5' pytest-django",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.dispatch(CmdAdd, nil),
	}
}

func (c *cli) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove MODULE...",
		Aliases: []string{"uninstall"},
		Short:   "Uninstall modules from the venv",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.dispatch(CmdRemove, nil),
	}
}

func (c *cli) newUpdateCmd() *cobra.Command {
	var f UpdateFlags
	cmd := &cobra.Command{
		Use:   "update",
		Short: "List outdated modules, or upgrade the declared ones",
		Args:  cobra.NoArgs,
		RunE: c.dispatch(CmdUpdate, func(args []string) Invocation {
			return Invocation{Args: args, Update: f}
		}),
	}
	cmd.Flags().BoolVar(&f.Upgrade, "upgrade", false, "Upgrade the dependencies declared in pyproject.toml")
	return cmd
}

func (c *cli) newLockCmd() *cobra.Command {
	var f LockFlags
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Write pip freeze output to requirements.txt",
		Args:  cobra.NoArgs,
		RunE: c.dispatch(CmdLock, func(args []string) Invocation {
			return Invocation{Args: args, Lock: f}
		}),
	}
	cmd.Flags().StringVarP(&f.Output, "output", "o", "requirements.txt", "File to write, relative to the project root")
	return cmd
}

// -----------------------------------------------------------------------------
// Environment
// -----------------------------------------------------------------------------

// groupUsage runs for a command group invoked without a known subcommand.
func groupUsage(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &UsageError{Msg: fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())}
	}
	return &UsageError{Msg: fmt.Sprintf("%s requires a subcommand", cmd.CommandPath())}
}

func (c *cli) newVenvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venv",
		Short: "Create or remove the virtual environment",
		Args:  cobra.ArbitraryArgs,
		RunE:  groupUsage,
	}
	cmd.AddCommand(
		c.newSimpleCmd("create", CmdVenvCreate, "Create the virtual environment"),
		c.newSimpleCmd("remove", CmdVenvRemove, "Delete the virtual environment"),
	)
	return cmd
}

func (c *cli) newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage variables in the project's .env file",
		Long: `Manage the project's .env file. .env is always kept in .gitignore.

Values of keys that look like credentials (TOKEN, SECRET, KEY, PASSWORD,
CREDENTIAL, AUTH) are redacted when listed.`,
		Args:  cobra.ArbitraryArgs,
		RunE:  groupUsage,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "set KEY=VALUE...",
			Short:   "Add or replace variables",
			Example: "  pyinit env set DEBUG=1 DATABASE_URL=postgres://localhost/app",
			Args:    cobra.MinimumNArgs(1),
			RunE:    c.dispatch(CmdEnvSet, nil),
		},
		c.newSimpleCmd("list", CmdEnvList, "List variables"),
		&cobra.Command{
			Use:   "unset KEY...",
			Short: "Remove variables",
			Args:  cobra.MinimumNArgs(1),
			RunE:  c.dispatch(CmdEnvUnset, nil),
		},
	)
	return cmd
}

// -----------------------------------------------------------------------------
// Dependency graph
// -----------------------------------------------------------------------------

func (c *cli) newGraphCmd() *cobra.Command {
	var f GraphFlags
	formats := make([]string, len(depgraph.Formats))
	for i, format := range depgraph.Formats {
		formats[i] = string(format)
	}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show which files import which modules",
		Long: `Scan the project's Python files and print every imported module with the
files that import it.

Imports are found line by line, not by parsing Python, so an import
statement inside a string can be reported. Files that cannot be decoded are
skipped with a warning.

Writing to a file whose extension is .png, .svg, .pdf, .jpg or .gif renders
an image with graphviz (dot); without graphviz the text tree is printed.`,
		Example: `  pyinit graph
  pyinit graph --format reverse
  pyinit graph --top-level --exclude 'tests/**'
  pyinit graph -o deps.svg
  pyinit graph --watch`,
		Args: cobra.NoArgs,
		RunE: c.dispatch(CmdGraph, func(args []string) Invocation {
			return Invocation{Args: args, Graph: f}
		}),
	}
	cmd.Flags().StringVar(&f.Format, "format", string(depgraph.FormatText),
		"Output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&f.TopLevel, "top-level", false, "Collapse a.b.c to a")
	cmd.Flags().StringArrayVar(&f.Exclude, "exclude", nil, "Extra glob to skip (repeatable)")
	cmd.Flags().BoolVar(&f.Watch, "watch", false, "Re-render whenever a source file changes")
	return cmd
}

// -----------------------------------------------------------------------------
// Release and metadata
// -----------------------------------------------------------------------------

func (c *cli) newReleaseCmd() *cobra.Command {
	var f ReleaseFlags
	cmd := &cobra.Command{
		Use:       "release major|minor|patch",
		Short:     "Bump the version in pyproject.toml",
		Example:   "  pyinit release patch\n  pyinit release minor --dry-run",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"major", "minor", "patch"},
		RunE: c.dispatch(CmdRelease, func(args []string) Invocation {
			return Invocation{Args: args, Release: f}
		}),
	}
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "Print the new version without writing it")
	return cmd
}

func (c *cli) newLicenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Choose the project license",
		Args:  cobra.ArbitraryArgs,
		RunE:  groupUsage,
	}
	cmd.AddCommand(
		c.newSimpleCmd("list", CmdLicenseList, "List available licenses"),
		&cobra.Command{
			Use:     "set NAME",
			Short:   "Write LICENSE and set [project].license",
			Example: "  pyinit license set mit",
			Args:    cobra.ExactArgs(1),
			RunE:    c.dispatch(CmdLicenseSet, nil),
		},
	)
	return cmd
}

func (c *cli) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the pyinit settings file",
		Long: `pyinit reads optional settings from $PYINIT_CONFIG or ~/.pyinit/pyinit.yaml.
PYINIT_PYTHON, PYINIT_VENV_DIR and PYINIT_TEMPLATES_DIR override the file.`,
		Args:  cobra.ArbitraryArgs,
		RunE:  groupUsage,
	}
	cmd.AddCommand(
		c.newSimpleCmd("show", CmdConfigShow, "Print the effective settings"),
		c.newSimpleCmd("init", CmdConfigInit, "Write a settings file with the defaults"),
	)
	return cmd
}
