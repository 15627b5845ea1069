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
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// =============================================================================
// Options
// =============================================================================

// DefaultExcludes are directory and file patterns never scanned.
var DefaultExcludes = []string{
	"venv",
	".venv",
	"env",
	".git",
	"__pycache__",
	"build",
	"dist",
	"*.egg-info",
	".tox",
	".nox",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
	"node_modules",
}

// DefaultExtensions are the file extensions treated as Python source.
var DefaultExtensions = []string{".py", ".pyi"}

// DefaultMaxFileSize is the largest file the scanner reads (2 MiB).
const DefaultMaxFileSize int64 = 2 << 20

// ScanOptions configures a Scanner.
type ScanOptions struct {
	// Exclude holds doublestar patterns matched against both the
	// slash-separated path relative to the root and the base name.
	// Nil means DefaultExcludes; an empty non-nil slice excludes nothing.
	Exclude []string

	// Extensions lists source file extensions. Nil means DefaultExtensions.
	Extensions []string

	// MaxFileSize skips larger files with a warning. Zero means
	// DefaultMaxFileSize.
	MaxFileSize int64

	// TopLevel collapses "a.b.c" to "a" before recording.
	TopLevel bool

	// Logger receives debug records for skipped files. Nil means slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// Results
// =============================================================================

// SkippedFile is a source file the scanner could not use.
type SkippedFile struct {
	Path   string
	Reason string
}

// ScanResult is the outcome of one scan.
type ScanResult struct {
	// Graph holds the de-duplicated module references.
	Graph *Graph

	// FilesScanned counts source files that were read and decoded.
	FilesScanned int

	// References counts raw import statements before de-duplication.
	References int

	// Skipped lists unreadable or undecodable files.
	Skipped []SkippedFile
}

// =============================================================================
// Scanner
// =============================================================================

// Scanner walks a project tree and extracts imports from Python sources.
type Scanner struct {
	exclude    []string
	extensions map[string]struct{}
	maxSize    int64
	topLevel   bool
	logger     *slog.Logger
}

// NewScanner validates opts and returns a Scanner.
//
// # Outputs
//
//   - *Scanner: Ready-to-use scanner
//   - error: ErrInvalidPattern if an exclude pattern is malformed
func NewScanner(opts ScanOptions) (*Scanner, error) {
	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExcludes
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	exts := opts.Extensions
	if exts == nil {
		exts = DefaultExtensions
	}
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		extSet[strings.ToLower(e)] = struct{}{}
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		exclude:    exclude,
		extensions: extSet,
		maxSize:    maxSize,
		topLevel:   opts.TopLevel,
		logger:     logger.With("component", "depgraph"),
	}, nil
}

// Scan walks root and builds the import graph.
//
// # Description
//
// Directories and files matching an exclude pattern are pruned. Every
// remaining file with a source extension is read, decoded and scanned line
// by line. Files that cannot be read, are too large or fail to decode are
// appended to ScanResult.Skipped and logged at warn level.
//
// # Inputs
//
//   - ctx: Checked between files; cancellation stops the walk
//   - root: Directory to scan
//
// # Outputs
//
//   - *ScanResult: Graph and counters (never nil on success)
//   - error: Only for an unreadable root or cancellation
//
// # Limitations
//
//   - Symlinked directories are not followed
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: %w", root, ErrNotDirectory)
	}

	result := &ScanResult{Graph: NewGraph()}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if rel == "." {
				return walkErr
			}
			s.skip(result, rel, walkErr.Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if rel == "." {
			return nil
		}
		if s.Excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.isSource(rel) {
			return nil
		}

		s.scanFile(result, p, rel, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Excluded reports whether the slash-separated relative path matches an
// exclude pattern.
func (s *Scanner) Excluded(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range s.exclude {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
		if match, _ := doublestar.Match(pattern, base); match {
			return true
		}
	}
	return false
}

func (s *Scanner) isSource(rel string) bool {
	_, ok := s.extensions[strings.ToLower(path.Ext(rel))]
	return ok
}

func (s *Scanner) scanFile(result *ScanResult, full, rel string, d fs.DirEntry) {
	info, err := d.Info()
	if err != nil {
		s.skip(result, rel, err.Error())
		return
	}
	if !info.Mode().IsRegular() {
		return
	}
	if info.Size() > s.maxSize {
		s.skip(result, rel, fmt.Sprintf("larger than %d bytes", s.maxSize))
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		s.skip(result, rel, err.Error())
		return
	}
	text, err := DecodeSource(data)
	if err != nil {
		s.skip(result, rel, err.Error())
		return
	}

	result.FilesScanned++
	for _, imp := range ExtractImports(text) {
		module := imp.Module
		if s.topLevel {
			module = TopLevel(module)
		}
		result.References++
		result.Graph.Add(ModuleReference{File: rel, Module: module, Line: imp.Line})
	}
}

func (s *Scanner) skip(result *ScanResult, rel, reason string) {
	s.logger.Debug("skipping file", "path", rel, "reason", reason)
	result.Skipped = append(result.Skipped, SkippedFile{Path: rel, Reason: reason})
}
