// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cleaner finds and removes build leftovers and caches.
package cleaner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// DefaultPatterns are the globs removed by `pyinit clean`. They are
// matched against the slash-separated path relative to the project root.
func DefaultPatterns() []string {
	return []string{
		"**/__pycache__",
		"**/.pytest_cache",
		"**/*.egg-info",
		"build",
		"dist",
		".coverage",
	}
}

// Target is one path selected for removal.
type Target struct {
	// Path is absolute.
	Path string

	// Rel is relative to the project root, slash-separated.
	Rel   string
	IsDir bool
}

// Cleaner matches paths under a project root.
type Cleaner struct {
	root     project.Root
	patterns []string
	skip     map[string]bool
	logger   *slog.Logger
}

// New validates patterns and returns a Cleaner. Empty patterns means
// DefaultPatterns. The directories named in skip (relative to root) are
// never entered; .git is always skipped.
func New(root project.Root, patterns, skip []string, logger *slog.Logger) (*Cleaner, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, util.Validationf("invalid clean pattern %q", p)
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Cleaner{
		root:     root,
		patterns: patterns,
		skip:     map[string]bool{".git": true},
		logger:   logger.With("component", "cleaner"),
	}
	for _, s := range skip {
		c.skip[filepath.ToSlash(filepath.Clean(s))] = true
	}
	return c, nil
}

// Patterns returns the active globs.
func (c *Cleaner) Patterns() []string { return c.patterns }

// Find walks the root in lexical order and returns every match. A matched
// directory is returned once and not descended into.
func (c *Cleaner) Find(ctx context.Context) ([]Target, error) {
	var targets []Target
	err := filepath.WalkDir(c.root.Path(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Debug("walk error", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(c.root.Path(), path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() && c.skip[rel] {
			return fs.SkipDir
		}
		if !c.matches(rel) {
			return nil
		}
		targets = append(targets, Target{Path: path, Rel: rel, IsDir: d.IsDir()})
		if d.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (c *Cleaner) matches(rel string) bool {
	for _, p := range c.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// RemoveResult summarizes a Remove call.
type RemoveResult struct {
	Removed int
	Failed  []error
}

// Remove deletes every target. Failures are collected and do not stop the
// remaining removals.
func Remove(targets []Target) RemoveResult {
	var res RemoveResult
	for _, t := range targets {
		var err error
		if t.IsDir {
			err = os.RemoveAll(t.Path)
		} else {
			err = os.Remove(t.Path)
		}
		if err != nil {
			res.Failed = append(res.Failed, fmt.Errorf("remove %s: %w", t.Rel, err))
			continue
		}
		res.Removed++
	}
	return res
}
