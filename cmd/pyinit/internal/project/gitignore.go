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
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// GitignoreFile is the ignore file name.
const GitignoreFile = ".gitignore"

// GitignoreFragment is the block of patterns every scaffolded project gets.
var GitignoreFragment = []string{
	"# Virtual Environment",
	"venv/",
	"__pycache__/",
	"*.pyc",
	"",
	"# IDE Specific Files",
	".idea/",
	".vscode/",
	"",
	"# Build artifacts",
	"dist/",
	"build/",
	"*.egg-info/",
}

// EnsureGitignore appends to <dir>/.gitignore every line of lines that is
// not already present, creating the file when needed. Comments and blank
// lines are written only together with at least one missing pattern.
//
// # Outputs
//
// The patterns that were added. Nothing is written when none are missing.
func EnsureGitignore(dir string, lines ...string) ([]string, error) {
	path := filepath.Join(dir, GitignoreFile)

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	present := ignoredPatterns(existing)

	var added []string
	var block []string
	for _, line := range lines {
		pattern := strings.TrimSpace(line)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			block = append(block, line)
			continue
		}
		if present[pattern] {
			continue
		}
		present[pattern] = true
		added = append(added, pattern)
		block = append(block, line)
	}
	if len(added) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 {
		if !bytes.HasSuffix(existing, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.TrimSpace(strings.Join(trimOrphanComments(block), "\n")))
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return added, nil
}

// IsIgnored reports whether .gitignore in dir lists pattern verbatim.
func IsIgnored(dir, pattern string) bool {
	data, err := os.ReadFile(filepath.Join(dir, GitignoreFile))
	if err != nil {
		return false
	}
	return ignoredPatterns(data)[strings.TrimSpace(pattern)]
}

func ignoredPatterns(data []byte) map[string]bool {
	set := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			set[line] = true
		}
	}
	return set
}

// trimOrphanComments drops comment lines whose group (up to the next blank
// line) contributed no pattern.
func trimOrphanComments(block []string) []string {
	var out, group []string
	hasPattern := false
	flush := func() {
		if hasPattern {
			out = append(out, group...)
			out = append(out, "")
		}
		group, hasPattern = nil, false
	}
	for _, line := range block {
		t := strings.TrimSpace(line)
		switch {
		case t == "":
			flush()
		case strings.HasPrefix(t, "#"):
			group = append(group, line)
		default:
			group = append(group, line)
			hasPattern = true
		}
	}
	flush()
	return out
}
