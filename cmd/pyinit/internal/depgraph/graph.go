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

import "sort"

// ModuleReference records that File imports Module at Line.
type ModuleReference struct {
	// File is the slash-separated path relative to the project root.
	File string

	// Module is the imported module name.
	Module string

	// Line is the 1-based line of the first import of Module in File.
	Line int
}

// Graph maps each imported module to the set of files that import it.
//
// Every (module, file) pair appears at most once no matter how many times
// the file imports the module. The zero value is not usable; call NewGraph.
type Graph struct {
	byModule map[string]map[string]int
	byFile   map[string]map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byModule: make(map[string]map[string]int),
		byFile:   make(map[string]map[string]struct{}),
	}
}

// Add records ref and reports whether the (module, file) pair was new.
// The first line seen for a pair is kept.
func (g *Graph) Add(ref ModuleReference) bool {
	files, ok := g.byModule[ref.Module]
	if !ok {
		files = make(map[string]int)
		g.byModule[ref.Module] = files
	}
	if _, seen := files[ref.File]; seen {
		return false
	}
	files[ref.File] = ref.Line

	modules, ok := g.byFile[ref.File]
	if !ok {
		modules = make(map[string]struct{})
		g.byFile[ref.File] = modules
	}
	modules[ref.Module] = struct{}{}
	return true
}

// Modules returns every imported module in lexical order.
func (g *Graph) Modules() []string {
	return sortedKeys(g.byModule)
}

// Files returns the files importing module in lexical order.
func (g *Graph) Files(module string) []string {
	return sortedKeys(g.byModule[module])
}

// SourceFiles returns every file with at least one import, in lexical order.
func (g *Graph) SourceFiles() []string {
	return sortedKeys(g.byFile)
}

// ModulesOf returns the modules imported by file in lexical order.
func (g *Graph) ModulesOf(file string) []string {
	return sortedKeys(g.byFile[file])
}

// References returns every recorded pair ordered by module, then file.
func (g *Graph) References() []ModuleReference {
	var refs []ModuleReference
	for _, module := range g.Modules() {
		for _, file := range g.Files(module) {
			refs = append(refs, ModuleReference{File: file, Module: module, Line: g.byModule[module][file]})
		}
	}
	return refs
}

// Len returns the number of distinct modules.
func (g *Graph) Len() int { return len(g.byModule) }

// Edges returns the number of distinct (module, file) pairs.
func (g *Graph) Edges() int {
	n := 0
	for _, files := range g.byModule {
		n += len(files)
	}
	return n
}

// IsEmpty reports whether no imports were recorded.
func (g *Graph) IsEmpty() bool { return len(g.byModule) == 0 }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
