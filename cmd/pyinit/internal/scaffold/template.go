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
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

//go:embed all:templates
var builtinTemplates embed.FS

// Placeholder tokens.
const (
	PlaceholderProjectName = "##PROJECT_NAME##"
	PlaceholderAuthorName  = "##AUTHOR_NAME##"
	PlaceholderAuthorEmail = "##AUTHOR_EMAIL##"
	PlaceholderYear        = "##YEAR##"
)

// DefaultTemplate is rendered by init and by new without -t.
const DefaultTemplate = "app"

// Replacements are the values substituted for the placeholders.
type Replacements struct {
	ProjectName string
	AuthorName  string
	AuthorEmail string
	Year        int
}

func (r Replacements) replacer() *strings.Replacer {
	return strings.NewReplacer(
		PlaceholderProjectName, r.ProjectName,
		PlaceholderAuthorName, r.AuthorName,
		PlaceholderAuthorEmail, r.AuthorEmail,
		PlaceholderYear, strconv.Itoa(r.Year),
	)
}

// Apply substitutes every placeholder in s.
func (r Replacements) Apply(s string) string {
	return r.replacer().Replace(s)
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog resolves template names to file trees.
type Catalog struct {
	overrideDir string
	builtin     fs.FS
}

// NewCatalog returns a catalog that looks in overrideDir (may be empty)
// before the built-in templates.
func NewCatalog(overrideDir string) *Catalog {
	sub, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return &Catalog{overrideDir: overrideDir, builtin: sub}
}

// Names lists every available template, sorted.
func (c *Catalog) Names() []string {
	seen := make(map[string]bool)
	if entries, err := fs.ReadDir(c.builtin, "."); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
			}
		}
	}
	if c.overrideDir != "" {
		if entries, err := os.ReadDir(c.overrideDir); err == nil {
			for _, e := range entries {
				if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
					seen[e.Name()] = true
				}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open returns the file tree of the named template.
//
// # Outputs
//
// Unknown names yield an error satisfying errors.Is(err, util.ErrNotFound)
// that lists the available templates.
func (c *Catalog) Open(name string) (fs.FS, error) {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return nil, util.Validationf("invalid template name %q", name)
	}
	if c.overrideDir != "" {
		dir := filepath.Join(c.overrideDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir), nil
		}
	}
	if info, err := fs.Stat(c.builtin, name); err == nil && info.IsDir() {
		return fs.Sub(c.builtin, name)
	}
	return nil, util.NotFoundf("template %q (available: %s)", name, strings.Join(c.Names(), ", "))
}

// =============================================================================
// Rendering
// =============================================================================

// RenderOptions controls Render.
type RenderOptions struct {
	// SkipExisting leaves files that already exist at the destination
	// untouched instead of failing.
	SkipExisting bool
}

// RenderResult lists what Render created, as slash-separated paths
// relative to the destination, in creation order.
type RenderResult struct {
	Dirs    []string
	Files   []string
	Skipped []string
}

// Created returns directories and files together, parents first.
func (r *RenderResult) Created() []string {
	out := make([]string, 0, len(r.Dirs)+len(r.Files))
	out = append(out, r.Dirs...)
	return append(out, r.Files...)
}

// ErrFileExists is returned when a rendered file would overwrite an
// existing one and SkipExisting is off.
var ErrFileExists = errors.New("file already exists")

// Render copies tmpl into dest, substituting placeholders in paths and
// contents.
//
// # Description
//
// The walk is lexical. Directories are created with mode 0755 and files
// with 0644. Render stops at the first error; RenderResult still lists
// everything created so far so the caller can undo it.
func Render(tmpl fs.FS, dest string, repl Replacements, opts RenderOptions) (*RenderResult, error) {
	r := repl.replacer()
	res := &RenderResult{}

	err := fs.WalkDir(tmpl, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		rel := r.Replace(p)
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
			if err := os.Mkdir(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", rel, err)
			}
			res.Dirs = append(res.Dirs, rel)
			return nil
		}

		if _, err := os.Lstat(target); err == nil {
			if opts.SkipExisting {
				res.Skipped = append(res.Skipped, rel)
				return nil
			}
			return fmt.Errorf("%w: %s", ErrFileExists, rel)
		}

		data, err := fs.ReadFile(tmpl, p)
		if err != nil {
			return fmt.Errorf("read template file %s: %w", p, err)
		}
		if err := os.WriteFile(target, []byte(r.Replace(string(data))), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		res.Files = append(res.Files, rel)
		return nil
	})
	return res, err
}

// Undo removes everything res lists as created, children first.
func (res *RenderResult) Undo(dest string) error {
	var errs []error
	created := res.Created()
	for i := len(created) - 1; i >= 0; i-- {
		if err := os.RemoveAll(filepath.Join(dest, filepath.FromSlash(created[i]))); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
