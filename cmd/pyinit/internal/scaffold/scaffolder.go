// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/resilience"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// Progress is told about each step as it starts, e.g. ("Creating", "venv").
type Progress func(verb, text string)

// Config holds what a Scaffolder needs from the environment.
type Config struct {
	Catalog *Catalog
	Runner  process.Runner

	// Python is the base interpreter used to create the venv.
	Python string

	// VenvDir is the venv directory name inside the project.
	VenvDir string

	// Stdout and Stderr receive `python -m venv` output.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// Scaffolder creates and converts projects.
type Scaffolder struct {
	cfg Config
}

// NewScaffolder returns a Scaffolder for cfg.
func NewScaffolder(cfg Config) *Scaffolder {
	if cfg.Catalog == nil {
		cfg.Catalog = NewCatalog("")
	}
	if cfg.VenvDir == "" {
		cfg.VenvDir = project.DefaultVenvDir
	}
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}
	if cfg.Stderr == nil {
		cfg.Stderr = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scaffolder{cfg: cfg}
}

// Result describes a created or converted project.
type Result struct {
	// Dir is the absolute project directory.
	Dir string

	// Package is the importable package name under src/.
	Package string

	Template string

	// Files are the rendered files, relative to Dir.
	Files []string

	// Migrated are the scripts moved into src/<Package>/ by Init.
	Migrated []string

	VenvCreated    bool
	GitInitialized bool
}

// NewOptions controls New.
type NewOptions struct {
	// Name is the folder to create. The package name is derived from it.
	Name     string
	Template string
	NoVenv   bool
	NoGit    bool
}

// New renders a template into <parent>/<opts.Name>.
//
// # Description
//
// The folder keeps the name as given; placeholders get the sanitized
// package name. Steps: create the folder, render, append the ignore
// fragment, git init, create the venv. If any step fails the folder is
// removed.
//
// # Outputs
//
// Validation problems (bad name, folder exists, unknown template) are
// reported before anything is written.
func (s *Scaffolder) New(ctx context.Context, parent string, opts NewOptions, progress Progress) (*Result, error) {
	progress = orNop(progress)

	name := strings.TrimSpace(opts.Name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, util.Validationf("invalid project folder name %q", opts.Name)
	}
	pkg := project.SanitizeName(name)
	if err := project.ValidatePackageName(pkg); err != nil {
		return nil, err
	}
	templateName := opts.Template
	if templateName == "" {
		templateName = DefaultTemplate
	}
	tmpl, err := s.cfg.Catalog.Open(templateName)
	if err != nil {
		return nil, err
	}

	parentAbs, err := filepath.Abs(parent)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", parent, err)
	}
	dest := filepath.Join(parentAbs, name)
	if _, err := os.Lstat(dest); err == nil {
		return nil, util.Validationf("folder %q already exists", name)
	}

	author, email := toolchain.NewGit(s.cfg.Runner, parentAbs).Author(ctx)
	repl := Replacements{ProjectName: pkg, AuthorName: author, AuthorEmail: email, Year: s.cfg.Now().Year()}
	res := &Result{Dir: dest, Package: pkg, Template: templateName}

	progress("Creating", fmt.Sprintf("project '%s' from template '%s'", name, templateName))

	saga := resilience.NewSaga(s.cfg.Logger)
	saga.AddStep(resilience.Step{
		Name:       "create project folder",
		Execute:    func(context.Context) error { return os.Mkdir(dest, 0o755) },
		Compensate: func(context.Context) error { return os.RemoveAll(dest) },
	})
	saga.AddStep(resilience.Step{
		Name: "render template",
		Execute: func(context.Context) error {
			rendered, err := Render(tmpl, dest, repl, RenderOptions{})
			if rendered != nil {
				res.Files = rendered.Files
			}
			return err
		},
	})
	saga.AddStep(resilience.Step{
		Name: "write .gitignore",
		Execute: func(context.Context) error {
			_, err := project.EnsureGitignore(dest, project.GitignoreFragment...)
			return err
		},
	})
	if !opts.NoGit {
		saga.AddStep(resilience.Step{
			Name: "git init",
			Execute: func(ctx context.Context) error {
				progress("Initializing", "git repository")
				if err := toolchain.NewGit(s.cfg.Runner, dest).Init(ctx); err != nil {
					return err
				}
				res.GitInitialized = true
				return nil
			},
		})
	}
	if !opts.NoVenv {
		saga.AddStep(s.venvStep(dest, res, progress))
	}

	if err := saga.Execute(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// InitOptions controls Init.
type InitOptions struct {
	NoVenv bool
	NoGit  bool
}

// Init converts dir into a project.
//
// # Description
//
// The package name is the sanitized directory name. Init refuses to touch
// a directory that already has pyproject.toml, src or the venv directory.
// Loose *.py files in dir are moved aside, the app template is rendered
// without overwriting existing files, and the scripts are moved into
// src/<package>/ (a script named main.py replaces the template's). git
// init runs only when dir is not a repository yet. On failure the scripts
// are put back and everything rendered is removed.
func (s *Scaffolder) Init(ctx context.Context, dir string, opts InitOptions, progress Progress) (*Result, error) {
	progress = orNop(progress)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	pkg := project.SanitizeName(filepath.Base(abs))
	if pkg == "" {
		return nil, util.Validationf("could not derive a valid project name from %q", filepath.Base(abs))
	}
	if err := project.ValidatePackageName(pkg); err != nil {
		return nil, err
	}
	for _, blocker := range []string{project.MarkerFile, "src", s.cfg.VenvDir} {
		if _, err := os.Lstat(filepath.Join(abs, blocker)); err == nil {
			return nil, util.Validationf("'%s' already exists in %s", blocker, abs)
		}
	}
	tmpl, err := s.cfg.Catalog.Open(DefaultTemplate)
	if err != nil {
		return nil, err
	}
	scripts, err := looseScripts(abs)
	if err != nil {
		return nil, err
	}

	progress("Initializing", fmt.Sprintf("project '%s'", pkg))

	author, email := toolchain.NewGit(s.cfg.Runner, abs).Author(ctx)
	repl := Replacements{ProjectName: pkg, AuthorName: author, AuthorEmail: email, Year: s.cfg.Now().Year()}
	res := &Result{Dir: abs, Package: pkg, Template: DefaultTemplate}

	stash := filepath.Join(abs, ".pyinit-"+uuid.NewString())
	pkgDir := filepath.Join(abs, "src", pkg)
	var rendered *RenderResult

	gitignorePath := filepath.Join(abs, project.GitignoreFile)
	previousIgnore, readErr := os.ReadFile(gitignorePath)
	hadIgnore := readErr == nil

	saga := resilience.NewSaga(s.cfg.Logger)
	saga.AddStep(resilience.Step{
		Name: "stash scripts",
		Execute: func(context.Context) error {
			if err := os.Mkdir(stash, 0o700); err != nil {
				return err
			}
			return moveAll(scripts, abs, stash)
		},
		Compensate: func(context.Context) error {
			if err := moveAll(scripts, stash, abs); err != nil {
				return err
			}
			return os.Remove(stash)
		},
	})
	saga.AddStep(resilience.Step{
		Name: "render template",
		Execute: func(context.Context) error {
			progress("Creating", "project structure")
			var err error
			rendered, err = Render(tmpl, abs, repl, RenderOptions{SkipExisting: true})
			if rendered != nil {
				res.Files = rendered.Files
			}
			return err
		},
		Compensate: func(context.Context) error {
			if rendered == nil {
				return nil
			}
			return rendered.Undo(abs)
		},
	})
	saga.AddStep(resilience.Step{
		Name: "migrate scripts",
		Execute: func(context.Context) error {
			if len(scripts) > 0 {
				progress("Migrating", strings.Join(scripts, ", "))
			}
			if err := moveAll(scripts, stash, pkgDir); err != nil {
				return err
			}
			res.Migrated = scripts
			return nil
		},
		Compensate: func(context.Context) error {
			return moveAll(scripts, pkgDir, stash)
		},
	})
	saga.AddStep(resilience.Step{
		Name: "remove stash",
		Execute: func(context.Context) error {
			return os.Remove(stash)
		},
		Compensate: func(context.Context) error {
			return os.MkdirAll(stash, 0o700)
		},
	})
	saga.AddStep(resilience.Step{
		Name: "write .gitignore",
		Execute: func(context.Context) error {
			_, err := project.EnsureGitignore(abs, project.GitignoreFragment...)
			return err
		},
		Compensate: func(context.Context) error {
			if hadIgnore {
				return os.WriteFile(gitignorePath, previousIgnore, 0o644)
			}
			return os.Remove(gitignorePath)
		},
	})
	git := toolchain.NewGit(s.cfg.Runner, abs)
	if !opts.NoGit && !git.IsRepo() {
		saga.AddStep(resilience.Step{
			Name: "git init",
			Execute: func(ctx context.Context) error {
				progress("Initializing", "git repository")
				if err := git.Init(ctx); err != nil {
					return err
				}
				res.GitInitialized = true
				return nil
			},
			Compensate: func(context.Context) error {
				return os.RemoveAll(filepath.Join(abs, ".git"))
			},
		})
	}
	if !opts.NoVenv {
		saga.AddStep(s.venvStep(abs, res, progress))
	}

	if err := saga.Execute(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Scaffolder) venvStep(dir string, res *Result, progress Progress) resilience.Step {
	return resilience.Step{
		Name: "create venv",
		Execute: func(ctx context.Context) error {
			progress("Creating", fmt.Sprintf("virtual environment '%s'", s.cfg.VenvDir))
			err := toolchain.CreateVenv(ctx, s.cfg.Runner, s.cfg.Python, dir, s.cfg.VenvDir, s.cfg.Stdout, s.cfg.Stderr)
			if err != nil {
				return err
			}
			res.VenvCreated = true
			return nil
		},
		Compensate: func(context.Context) error {
			return os.RemoveAll(filepath.Join(dir, s.cfg.VenvDir))
		},
	}
}

// looseScripts lists the regular *.py files directly in dir, sorted.
func looseScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".py") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// moveAll moves each named file from src to dst, replacing existing
// files. Missing sources are ignored so the move can be retried.
func moveAll(names []string, src, dst string) error {
	for _, name := range names {
		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)
		if _, err := os.Lstat(from); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.Remove(to); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("replace %s: %w", to, err)
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("move %s: %w", name, err)
		}
	}
	return nil
}

func orNop(p Progress) Progress {
	if p == nil {
		return func(string, string) {}
	}
	return p
}
