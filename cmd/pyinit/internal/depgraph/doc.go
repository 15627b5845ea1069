// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package depgraph builds and renders the import graph of a Python project.
//
// # Overview
//
// The pipeline has three stages, each usable on its own:
//
//  1. [Scanner] walks the project tree, skipping excluded directories,
//     decodes every Python source file and extracts the modules it imports.
//  2. [Graph] collects the references as module → set of files. A file
//     that imports the same module several times is recorded once.
//  3. [Renderer] prints the graph as a text tree, a reverse text tree,
//     Graphviz DOT or JSON, or hands DOT to the external dot tool to produce
//     an image.
//
// # Import Detection
//
// Detection is lexical and line based. Statements of the form
// "import a, b.c as d" and "from x.y import z" are recognized after
// leading whitespace is removed; relative imports keep their leading dots.
// Python is never parsed, so an "import" at the start of a line inside a
// multi-line string is reported as an import. This trade-off is accepted.
//
// # Error Handling
//
// Files that cannot be read or decoded are skipped and reported in
// [ScanResult.Skipped]; they never fail a scan. A failure of the dot tool
// degrades to the text rendering with a warning.
//
// # Thread Safety
//
// None of the types here are safe for concurrent use. Each command builds a
// fresh Graph and discards it on exit.
package depgraph
