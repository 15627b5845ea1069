// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package depgraph

import (
	"regexp"
	"strings"
)

var (
	// importPattern matches "import a, b.c as d".
	importPattern = regexp.MustCompile(`^import\s+(.+)$`)

	// fromPattern matches "from ..pkg.mod import names".
	fromPattern = regexp.MustCompile(`^from\s+(\.*)\s*([A-Za-z_][\w.]*)?\s+import\b\s*(.*)$`)

	// dottedName matches an absolute dotted module path.
	dottedName = regexp.MustCompile(`^[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*$`)

	// identifier matches a single Python identifier.
	identifier = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// Import is one module reference found in a source file.
type Import struct {
	// Module is the dotted module name as written, with leading dots kept
	// for relative imports.
	Module string

	// Line is the 1-based line number of the statement.
	Line int
}

// ExtractImports returns every import found in src, in order of appearance.
// Duplicates are kept; the graph is responsible for de-duplication.
//
// # Description
//
// Each line is stripped of leading whitespace and of a trailing comment,
// then split on ";" so "import a; import b" yields both. Anything that is
// not an import statement is ignored, including lines that would be syntax
// errors in Python.
//
// # Example
//
//	ExtractImports("import os, sys as system\nfrom . import util\n")
//	// [{os 1} {sys 1} {.util 2}]
func ExtractImports(src string) []Import {
	var imports []Import
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimLeft(line, " \t\f")
		if line == "" || line[0] == '#' {
			continue
		}
		if !strings.HasPrefix(line, "import") && !strings.HasPrefix(line, "from") {
			continue
		}
		if code, _, found := strings.Cut(line, "#"); found {
			line = code
		}
		for _, stmt := range strings.Split(line, ";") {
			for _, module := range parseStatement(strings.TrimSpace(stmt)) {
				imports = append(imports, Import{Module: module, Line: i + 1})
			}
		}
	}
	return imports
}

func parseStatement(stmt string) []string {
	if m := importPattern.FindStringSubmatch(stmt); m != nil {
		var modules []string
		for _, part := range strings.Split(m[1], ",") {
			name := stripAlias(part)
			if dottedName.MatchString(name) {
				modules = append(modules, name)
			}
		}
		return modules
	}

	m := fromPattern.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}
	dots, module, names := m[1], m[2], m[3]

	if module != "" {
		if !dottedName.MatchString(module) {
			return nil
		}
		return []string{dots + module}
	}
	if dots == "" {
		return nil
	}

	// "from . import a, b" refers to sibling modules a and b.
	var modules []string
	names = strings.Trim(strings.TrimSpace(names), "()\\")
	for _, part := range strings.Split(names, ",") {
		name := stripAlias(part)
		if identifier.MatchString(name) {
			modules = append(modules, dots+name)
		}
	}
	if len(modules) == 0 {
		return []string{dots}
	}
	return modules
}

// stripAlias turns "b.c as d" into "b.c".
func stripAlias(part string) string {
	part = strings.TrimSpace(part)
	if fields := strings.Fields(part); len(fields) > 0 {
		return strings.Trim(fields[0], "()")
	}
	return ""
}

// TopLevel returns the first segment of an absolute module name. Relative
// names are returned unchanged.
//
//	TopLevel("os.path") == "os"
//	TopLevel(".utils.io") == ".utils.io"
func TopLevel(module string) string {
	if strings.HasPrefix(module, ".") {
		return module
	}
	if head, _, found := strings.Cut(module, "."); found {
		return head
	}
	return module
}
