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
	"os"
	"path/filepath"
	"runtime"
)

// DefaultVenvDir is the virtual environment directory name under a root.
const DefaultVenvDir = "venv"

// Venv describes a virtual environment directory and the executables in it.
// It does not create anything; see the venv command for that.
type Venv struct {
	// Dir is the absolute venv directory.
	Dir string

	goos string
}

// NewVenv returns the venv at <root>/<dirName> for the running platform.
// An empty dirName means DefaultVenvDir.
func NewVenv(root Root, dirName string) Venv {
	return newVenvFor(root, dirName, runtime.GOOS)
}

func newVenvFor(root Root, dirName, goos string) Venv {
	if dirName == "" {
		dirName = DefaultVenvDir
	}
	return Venv{Dir: root.Join(dirName), goos: goos}
}

// BinDir returns Scripts on Windows and bin elsewhere.
func (v Venv) BinDir() string {
	if v.goos == "windows" {
		return filepath.Join(v.Dir, "Scripts")
	}
	return filepath.Join(v.Dir, "bin")
}

// Bin returns the path of an executable installed in the venv.
func (v Venv) Bin(tool string) string {
	if v.goos == "windows" {
		return filepath.Join(v.BinDir(), tool+".exe")
	}
	return filepath.Join(v.BinDir(), tool)
}

// Python returns the venv interpreter.
func (v Venv) Python() string { return v.Bin("python") }

// Pip returns the venv pip executable.
func (v Venv) Pip() string { return v.Bin("pip") }

// Exists reports whether the venv directory is present.
func (v Venv) Exists() bool {
	info, err := os.Stat(v.Dir)
	return err == nil && info.IsDir()
}

// HasPython reports whether the venv interpreter is present.
func (v Venv) HasPython() bool {
	_, err := os.Stat(v.Python())
	return err == nil
}
