// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
)

// Placeholder author values used when git has no identity configured.
const (
	DefaultAuthorName  = "Your Name"
	DefaultAuthorEmail = "you@example.com"
)

// Git runs git commands in one directory.
type Git struct {
	runner process.Runner
	dir    string
}

// NewGit returns a Git helper rooted at dir.
func NewGit(runner process.Runner, dir string) *Git {
	return &Git{runner: runner, dir: dir}
}

func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	out, err := g.runner.Output(ctx, process.Cmd("git", args...).In(g.dir))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir has its own .git entry.
func (g *Git) IsRepo() bool {
	_, err := os.Stat(filepath.Join(g.dir, ".git"))
	return err == nil
}

// Init runs `git init` quietly.
func (g *Git) Init(ctx context.Context) error {
	_, err := g.output(ctx, "init", "--quiet")
	return err
}

// ConfigValue returns `git config --get key`, or "" when unset or git is
// unavailable.
func (g *Git) ConfigValue(ctx context.Context, key string) string {
	v, err := g.output(ctx, "config", "--get", key)
	if err != nil {
		return ""
	}
	return v
}

// Author returns the configured user name and email, substituting
// placeholders for anything missing.
func (g *Git) Author(ctx context.Context) (name, email string) {
	name = g.ConfigValue(ctx, "user.name")
	if name == "" {
		name = DefaultAuthorName
	}
	email = g.ConfigValue(ctx, "user.email")
	if email == "" {
		email = DefaultAuthorEmail
	}
	return name, email
}

// Branch returns the current branch name.
func (g *Git) Branch(ctx context.Context) (string, error) {
	return g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// LastCommit returns "<short hash> <subject> (<relative date>)".
func (g *Git) LastCommit(ctx context.Context) (string, error) {
	return g.output(ctx, "log", "-1", "--format=%h %s (%cr)")
}

// IsClean reports whether the working tree has no changes.
func (g *Git) IsClean(ctx context.Context) (bool, error) {
	out, err := g.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}
