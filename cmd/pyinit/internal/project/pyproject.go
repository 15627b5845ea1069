// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// Pyproject is the subset of pyproject.toml that pyinit reads.
type Pyproject struct {
	Project     ProjectTable     `toml:"project"`
	BuildSystem BuildSystemTable `toml:"build-system"`
}

// ProjectTable mirrors the [project] table.
type ProjectTable struct {
	Name                 string              `toml:"name"`
	Version              string              `toml:"version"`
	Description          string              `toml:"description"`
	RequiresPython       string              `toml:"requires-python"`
	License              any                 `toml:"license"`
	Authors              []Person            `toml:"authors"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	Scripts              map[string]string   `toml:"scripts"`
}

// Person is one entry of [project].authors.
type Person struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// BuildSystemTable mirrors the [build-system] table.
type BuildSystemTable struct {
	Requires     []string `toml:"requires"`
	BuildBackend string   `toml:"build-backend"`
}

// LoadPyproject reads and parses the marker file under root.
//
// A missing file matches util.ErrNotFound; a file that is not valid TOML
// matches util.ErrValidation.
func LoadPyproject(root Root) (*Pyproject, error) {
	return ReadPyproject(root.PyprojectPath())
}

// ReadPyproject parses the pyproject.toml at path.
func ReadPyproject(path string) (*Pyproject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, util.NotFoundf("%s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParsePyproject(data)
}

// ParsePyproject decodes pyproject.toml content.
func ParsePyproject(data []byte) (*Pyproject, error) {
	var p Pyproject
	if err := toml.Unmarshal(data, &p); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, util.Validationf("invalid %s at line %d column %d: %s", MarkerFile, row, col, decodeErr.Error())
		}
		return nil, util.Validationf("invalid %s: %v", MarkerFile, err)
	}
	return &p, nil
}

// LicenseName returns the license expression whether it was written as a
// string, as {text = "..."} or as {file = "..."}.
func (p *Pyproject) LicenseName() string {
	switch v := p.Project.License.(type) {
	case string:
		return v
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
		if file, ok := v["file"].(string); ok {
			return "see " + file
		}
	}
	return ""
}

// AuthorNames returns "Name <email>" for each author.
func (p *Pyproject) AuthorNames() []string {
	out := make([]string, 0, len(p.Project.Authors))
	for _, a := range p.Project.Authors {
		switch {
		case a.Name != "" && a.Email != "":
			out = append(out, fmt.Sprintf("%s <%s>", a.Name, a.Email))
		case a.Name != "":
			out = append(out, a.Name)
		case a.Email != "":
			out = append(out, a.Email)
		}
	}
	return out
}

// PackageName returns the importable package name for the project, falling
// back to fallback when [project].name is empty.
func (p *Pyproject) PackageName(fallback string) string {
	if p != nil && p.Project.Name != "" {
		return SanitizeName(p.Project.Name)
	}
	return SanitizeName(fallback)
}

// DependencyNames returns the declared requirement names from
// [project].dependencies and every optional-dependencies group, with
// version specifiers, extras and markers stripped. The result is sorted and
// contains each name once.
func (p *Pyproject) DependencyNames() []string {
	seen := make(map[string]struct{})
	add := func(reqs []string) {
		for _, req := range reqs {
			if name := RequirementName(req); name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	add(p.Project.Dependencies)
	for _, group := range p.Project.OptionalDependencies {
		add(group)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequirementName strips the version specifier, extras and environment
// marker from a PEP 508 requirement string.
//
//	RequirementName("requests[socks]>=2.31; python_version>'3.8'") == "requests"
func RequirementName(req string) string {
	req = strings.TrimSpace(req)
	if i := strings.IndexAny(req, "<>=!~;[( @"); i >= 0 {
		req = req[:i]
	}
	return strings.TrimSpace(req)
}

// NormalizeName applies PEP 503 normalization so "Foo_Bar" and "foo-bar"
// compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}
