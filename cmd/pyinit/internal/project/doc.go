// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package project locates a Python project on disk and reads its metadata.
//
// # Overview
//
// A project root is the nearest directory, starting at the working directory
// and walking up to the filesystem root, that contains a regular file named
// pyproject.toml. [FindRoot] performs that search and never mutates the
// filesystem.
//
// Once a [Root] is known, [LoadPyproject] parses pyproject.toml and [NewVenv]
// describes the virtual environment that lives under it.
//
// # Usage
//
//	root, err := project.FindRoot(cwd)
//	if errors.Is(err, project.ErrProjectNotFound) {
//	    // not inside a project
//	}
//	meta, err := project.LoadPyproject(root)
//	venv := project.NewVenv(root, "venv")
//	fmt.Println(venv.Python())
//
// # Naming
//
// [SanitizeName] converts a directory or user-supplied name into an
// importable package name and [ValidatePackageName] rejects anything that is
// still not a valid Python identifier.
package project
