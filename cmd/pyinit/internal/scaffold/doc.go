// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scaffold creates projects from templates.
//
// # Templates
//
// A template is a directory tree. Placeholders are replaced in both file
// paths and file contents:
//
//	##PROJECT_NAME##  importable package name (sanitized)
//	##AUTHOR_NAME##   git config user.name, or "Your Name"
//	##AUTHOR_EMAIL##  git config user.email, or "you@example.com"
//	##YEAR##          current year
//
// The app, cli, flask and library templates are compiled into the binary.
// A templates directory from the settings file is searched first, so users
// can add templates or shadow a built-in one.
//
// # Operations
//
// [Scaffolder.New] renders a template into a fresh folder. [Scaffolder.Init]
// converts the current directory, moving loose scripts into the package.
// Both run as a [resilience.Saga] so a failure leaves the filesystem as it
// was.
package scaffold
