// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package release bumps the version in pyproject.toml.
//
// The file is edited in place with a targeted substitution so comments,
// ordering and quoting survive; only the value of version inside the
// [project] table changes.
package release

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// Part names the version component to increment.
type Part string

const (
	Major Part = "major"
	Minor Part = "minor"
	Patch Part = "patch"
)

// ParsePart validates a user-supplied part name.
func ParsePart(s string) (Part, error) {
	switch p := Part(strings.ToLower(strings.TrimSpace(s))); p {
	case Major, Minor, Patch:
		return p, nil
	default:
		return "", util.Validationf("unknown version part %q (want major, minor or patch)", s)
	}
}

// Bump returns version with part incremented and lower parts reset.
//
//	Bump("1.4.2", Minor) == "1.5.0"
//
// version must be plain X.Y.Z; pre-release and build suffixes are rejected.
func Bump(version string, part Part) (string, error) {
	v := "v" + strings.TrimSpace(version)
	if !semver.IsValid(v) || semver.Canonical(v) != v || semver.Prerelease(v) != "" {
		return "", util.Validationf("version %q is not in X.Y.Z form", version)
	}
	fields := strings.Split(strings.TrimPrefix(v, "v"), ".")
	nums := make([]int, 3)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return "", util.Validationf("version %q is not in X.Y.Z form", version)
		}
		nums[i] = n
	}

	switch part {
	case Major:
		nums = []int{nums[0] + 1, 0, 0}
	case Minor:
		nums = []int{nums[0], nums[1] + 1, 0}
	case Patch:
		nums[2]++
	default:
		return "", util.Validationf("unknown version part %q", part)
	}
	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]), nil
}

var versionEntry = regexp.MustCompile(`(?m)^([ \t]*version[ \t]*=[ \t]*)(["'])([^"'\n]*)(["'])`)

// ReplaceVersion rewrites the [project] version in content.
//
// # Outputs
//
// The new content and the version that was replaced. A file without a
// [project] table or without a quoted version in it fails with
// util.ErrValidation.
func ReplaceVersion(content []byte, newVersion string) ([]byte, string, error) {
	start, end, ok := project.TableRange(content, "project")
	if !ok {
		return nil, "", util.Validationf("no [project] table in %s", project.MarkerFile)
	}
	section := content[start:end]
	m := versionEntry.FindSubmatchIndex(section)
	if m == nil {
		return nil, "", util.Validationf("no version in the [project] table of %s", project.MarkerFile)
	}
	old := string(section[m[6]:m[7]])

	var out []byte
	out = append(out, content[:start+m[6]]...)
	out = append(out, newVersion...)
	out = append(out, content[start+m[7]:]...)
	return out, old, nil
}

// Result describes a bump.
type Result struct {
	Path   string
	Old    string
	New    string
	DryRun bool
}

// Release bumps the version in the pyproject.toml of root. With dryRun the
// file is left untouched.
func Release(root project.Root, part Part, dryRun bool) (*Result, error) {
	path := root.PyprojectPath()
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := project.ParsePyproject(content); err != nil {
		return nil, err
	}

	_, current, err := ReplaceVersion(content, "")
	if err != nil {
		return nil, err
	}
	next, err := Bump(current, part)
	if err != nil {
		return nil, err
	}
	if semver.Compare("v"+next, "v"+current) <= 0 {
		return nil, util.Validationf("bumped version %s does not sort after %s", next, current)
	}

	updated, _, err := ReplaceVersion(content, next)
	if err != nil {
		return nil, err
	}
	res := &Result{Path: path, Old: current, New: next, DryRun: dryRun}
	if dryRun {
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return res, nil
}
