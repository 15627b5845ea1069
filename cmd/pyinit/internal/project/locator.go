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
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// MarkerFile is the file whose presence identifies a project root.
const MarkerFile = "pyproject.toml"

// ErrProjectNotFound is returned when no ancestor holds MarkerFile.
var ErrProjectNotFound = fmt.Errorf("%w: no %s in this directory or any parent", util.ErrNotFound, MarkerFile)

// =============================================================================
// Root
// =============================================================================

// Root is the absolute path of a project directory. It is immutable for
// the duration of a command.
type Root struct {
	path string
}

// NewRoot wraps an existing directory as a Root without checking for the
// marker file. It is used when a command creates the project itself.
func NewRoot(dir string) (Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, fmt.Errorf("resolve %s: %w", dir, err)
	}
	return Root{path: abs}, nil
}

// Path returns the absolute root directory.
func (r Root) Path() string { return r.path }

// Name returns the base name of the root directory.
func (r Root) Name() string { return filepath.Base(r.path) }

// Join joins elem onto the root directory.
func (r Root) Join(elem ...string) string {
	return filepath.Join(append([]string{r.path}, elem...)...)
}

// PyprojectPath returns the path of the marker file.
func (r Root) PyprojectPath() string { return r.Join(MarkerFile) }

// IsZero reports whether r was never set.
func (r Root) IsZero() bool { return r.path == "" }

// =============================================================================
// Locator
// =============================================================================

// FindRoot returns the nearest directory at or above start that contains
// MarkerFile.
//
// # Description
//
// Checks start and then each ancestor in turn, up to and including the
// filesystem root. The first directory holding a regular file named
// pyproject.toml wins. A directory named pyproject.toml does not count.
//
// # Inputs
//
//   - start: Directory to begin the search from (relative paths are resolved
//     against the process working directory)
//
// # Outputs
//
//   - Root: The project root
//   - error: ErrProjectNotFound (which matches util.ErrNotFound) when no
//     ancestor qualifies
//
// # Example
//
//	root, err := FindRoot("/home/me/proj/src/pkg")
//	// root.Path() == "/home/me/proj" when /home/me/proj/pyproject.toml exists
//
// # Limitations
//
//   - Symlinks are not resolved; the search follows the lexical parent chain
func FindRoot(start string) (Root, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Root{}, fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		if hasMarker(dir) {
			return Root{path: dir}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Root{}, fmt.Errorf("%w (searched from %s)", ErrProjectNotFound, start)
		}
		dir = parent
	}
}

// hasMarker treats any stat failure (missing, permission denied, a file in
// the middle of the path) as "not here" so the walk keeps going.
func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && info.Mode().IsRegular()
}
