// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package info collects the facts printed by `pyinit info`.
package info

import (
	"bufio"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/toolchain"
)

// Info is a snapshot of one project.
type Info struct {
	Name           string
	Version        string
	Description    string
	Authors        []string
	License        string
	RequiresPython string
	Path           string

	Venv  *VenvInfo
	Stats SourceStats
	Git   *GitInfo
}

// VenvInfo is nil when the venv interpreter does not exist.
type VenvInfo struct {
	Python   string
	Packages int
}

// SourceStats covers the .py files under src.
type SourceStats struct {
	Files        int
	Lines        int
	LastModified time.Time
}

// GitInfo is nil when the project is not a git repository.
type GitInfo struct {
	Branch     string
	LastCommit string
	Clean      bool
}

// Collector gathers Info. Missing pieces (no venv, no git, tool failures)
// leave the corresponding fields empty and are logged at debug level.
type Collector struct {
	runner  process.Runner
	venvDir string
	logger  *slog.Logger
}

// NewCollector returns a Collector.
func NewCollector(runner process.Runner, venvDir string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{runner: runner, venvDir: venvDir, logger: logger.With("component", "info")}
}

// Collect reads pyproject.toml and inspects the venv, src and git. Only a
// missing or malformed pyproject.toml is an error.
func (c *Collector) Collect(ctx context.Context, root project.Root) (*Info, error) {
	py, err := project.LoadPyproject(root)
	if err != nil {
		return nil, err
	}
	meta := py.Project
	in := &Info{
		Name:           meta.Name,
		Version:        meta.Version,
		Description:    meta.Description,
		Authors:        py.AuthorNames(),
		License:        py.LicenseName(),
		RequiresPython: meta.RequiresPython,
		Path:           root.Path(),
	}

	in.Venv = c.venvInfo(ctx, root)
	in.Stats = SourceStatsFor(root.Join("src"))
	in.Git = c.gitInfo(ctx, root)
	return in, nil
}

func (c *Collector) venvInfo(ctx context.Context, root project.Root) *VenvInfo {
	venv := project.NewVenv(root, c.venvDir)
	if !venv.HasPython() {
		return nil
	}
	py := toolchain.NewPython(c.runner, venv.Python(), root.Path(), nil, nil)
	vi := &VenvInfo{}
	if v, err := py.Version(ctx); err == nil {
		vi.Python = v
	} else {
		c.logger.Debug("venv python version failed", "error", err)
	}
	if n, err := py.InstalledCount(ctx); err == nil {
		vi.Packages = n
	} else {
		c.logger.Debug("pip list failed", "error", err)
	}
	return vi
}

func (c *Collector) gitInfo(ctx context.Context, root project.Root) *GitInfo {
	git := toolchain.NewGit(c.runner, root.Path())
	if !git.IsRepo() {
		return nil
	}
	gi := &GitInfo{}
	var err error
	if gi.Branch, err = git.Branch(ctx); err != nil {
		c.logger.Debug("git branch failed", "error", err)
		return nil
	}
	if gi.LastCommit, err = git.LastCommit(ctx); err != nil {
		// A fresh repository has no commits.
		gi.LastCommit = ""
	}
	gi.Clean, _ = git.IsClean(ctx)
	return gi
}

// SourceStatsFor counts .py files and their lines under dir. A missing dir
// yields zero stats; unreadable files are skipped.
func SourceStatsFor(dir string) SourceStats {
	var s SourceStats
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		lines, err := countLines(path)
		if err != nil {
			return nil
		}
		s.Files++
		s.Lines += lines
		if fi.ModTime().After(s.LastModified) {
			s.LastModified = fi.ModTime()
		}
		return nil
	})
	return s
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}
