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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
)

// EmptyGraphMessage is the rendering of a graph with no imports.
const EmptyGraphMessage = "No imports found."

// Format selects a rendering.
type Format string

const (
	FormatText    Format = "text"
	FormatReverse Format = "reverse"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
)

// Formats lists every accepted Format.
var Formats = []Format{FormatText, FormatReverse, FormatDOT, FormatJSON}

// imageFormats maps output file extensions to dot -T values.
var imageFormats = map[string]string{
	".png":  "png",
	".svg":  "svg",
	".pdf":  "pdf",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".gif":  "gif",
}

// ParseFormat validates s. An empty string means FormatText.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of text, reverse, dot, json)", ErrUnknownFormat, s)
}

// IsImagePath reports whether path has an extension dot can render to.
func IsImagePath(path string) bool {
	_, ok := imageFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// =============================================================================
// Text Renderings
// =============================================================================

// WriteText writes the module → files tree. Modules and files are sorted.
//
//	x
//	├── a.py
//	└── b.py
//	y
//	└── b.py
func WriteText(w io.Writer, g *Graph) error {
	if g.IsEmpty() {
		_, err := fmt.Fprintln(w, EmptyGraphMessage)
		return err
	}
	var buf bytes.Buffer
	for _, module := range g.Modules() {
		writeBranch(&buf, module, g.Files(module))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteReverse writes the file → modules tree.
func WriteReverse(w io.Writer, g *Graph) error {
	if g.IsEmpty() {
		_, err := fmt.Fprintln(w, EmptyGraphMessage)
		return err
	}
	var buf bytes.Buffer
	for _, file := range g.SourceFiles() {
		writeBranch(&buf, file, g.ModulesOf(file))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeBranch(buf *bytes.Buffer, head string, leaves []string) {
	buf.WriteString(head)
	buf.WriteString("\n")
	for i, leaf := range leaves {
		connector := "├── "
		if i == len(leaves)-1 {
			connector = "└── "
		}
		buf.WriteString(connector)
		buf.WriteString(leaf)
		buf.WriteString("\n")
	}
}

// WriteDOT writes the graph in Graphviz DOT format. Files are ellipses,
// modules are boxes, and each edge points from a file to a module it
// imports.
func WriteDOT(w io.Writer, g *Graph) error {
	var buf bytes.Buffer

	buf.WriteString("digraph imports {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n\n")

	for _, file := range g.SourceFiles() {
		fmt.Fprintf(&buf, "  %q [shape=ellipse];\n", "file:"+file)
	}
	for _, module := range g.Modules() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", "module:"+module, module)
	}
	if !g.IsEmpty() {
		buf.WriteString("\n")
	}
	for _, module := range g.Modules() {
		for _, file := range g.Files(module) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", "file:"+file, "module:"+module)
		}
	}

	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// jsonGraph is the JSON rendering.
type jsonGraph struct {
	Modules []jsonModule `json:"modules"`
	Edges   int          `json:"edges"`
}

type jsonModule struct {
	Name  string     `json:"name"`
	Files []jsonFile `json:"files"`
}

type jsonFile struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// WriteJSON writes the graph as indented JSON.
func WriteJSON(w io.Writer, g *Graph) error {
	out := jsonGraph{Modules: []jsonModule{}, Edges: g.Edges()}
	for _, module := range g.Modules() {
		m := jsonModule{Name: module}
		for _, file := range g.Files(module) {
			m.Files = append(m.Files, jsonFile{Path: file, Line: g.byModule[module][file]})
		}
		out.Modules = append(out.Modules, m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Write renders g in format f.
func Write(w io.Writer, g *Graph, f Format) error {
	switch f {
	case FormatText, "":
		return WriteText(w, g)
	case FormatReverse:
		return WriteReverse(w, g)
	case FormatDOT:
		return WriteDOT(w, g)
	case FormatJSON:
		return WriteJSON(w, g)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// =============================================================================
// Renderer
// =============================================================================

// RenderOptions controls Renderer.Render.
type RenderOptions struct {
	// Format is used for stdout and non-image output files.
	Format Format

	// Output is an optional file path. An image extension (.png, .svg,
	// .pdf, .jpg, .gif) renders through the dot tool.
	Output string
}

// RenderResult describes what Render actually produced.
type RenderResult struct {
	// Format is the rendering written.
	Format Format

	// Output is the file written, or "" for w.
	Output string

	// Image is true when dot produced Output.
	Image bool

	// Warning explains a fallback to text, if any.
	Warning string
}

// Renderer writes graphs, shelling out to dot for images.
type Renderer struct {
	runner process.Runner
	logger *slog.Logger
}

// NewRenderer returns a Renderer that uses runner for the dot tool.
func NewRenderer(runner process.Runner, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{runner: runner, logger: logger.With("component", "depgraph")}
}

// Render writes g to w or to opts.Output.
//
// # Description
//
// Without Output the chosen format is written to w. With a non-image
// Output the format is written to that file. With an image Output the DOT
// form is piped to `dot -T<type> -o <Output>`; if dot is missing or fails,
// the text tree is written to w instead and RenderResult.Warning says why.
// A dot failure is not an error.
func (r *Renderer) Render(ctx context.Context, w io.Writer, g *Graph, opts RenderOptions) (RenderResult, error) {
	format := opts.Format
	if format == "" {
		format = FormatText
	}

	if opts.Output == "" {
		return RenderResult{Format: format}, Write(w, g, format)
	}

	if !IsImagePath(opts.Output) {
		var buf bytes.Buffer
		if err := Write(&buf, g, format); err != nil {
			return RenderResult{}, err
		}
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
			return RenderResult{}, fmt.Errorf("write %s: %w", opts.Output, err)
		}
		return RenderResult{Format: format, Output: opts.Output}, nil
	}

	if err := r.renderImage(ctx, g, opts.Output); err != nil {
		r.logger.Warn("image rendering failed", "output", opts.Output, "error", err)
		result := RenderResult{
			Format:  FormatText,
			Warning: fmt.Sprintf("could not render %s with graphviz (%v); showing text instead", opts.Output, err),
		}
		return result, WriteText(w, g)
	}
	return RenderResult{Format: FormatDOT, Output: opts.Output, Image: true}, nil
}

func (r *Renderer) renderImage(ctx context.Context, g *Graph, out string) error {
	if _, err := r.runner.LookPath("dot"); err != nil {
		return fmt.Errorf("dot not found on PATH: %w", err)
	}

	var dot bytes.Buffer
	if err := WriteDOT(&dot, g); err != nil {
		return err
	}
	kind := imageFormats[strings.ToLower(filepath.Ext(out))]
	cmd := process.Cmd("dot", "-T"+kind, "-o", out).WithInput(&dot)
	return r.runner.Run(ctx, cmd)
}
