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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readGitignore(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, GitignoreFile))
	require.NoError(t, err)
	return string(data)
}

func TestEnsureGitignore_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	added, err := EnsureGitignore(dir, GitignoreFragment...)
	require.NoError(t, err)
	assert.Equal(t, []string{"venv/", "__pycache__/", "*.pyc", ".idea/", ".vscode/", "dist/", "build/", "*.egg-info/"}, added)

	content := readGitignore(t, dir)
	assert.Contains(t, content, "# Virtual Environment\nvenv/\n__pycache__/\n*.pyc\n\n# IDE Specific Files")
	assert.Contains(t, content, "*.egg-info/\n")
}

func TestEnsureGitignore_Idempotent(t *testing.T) {
	dir := t.TempDir()
	_, err := EnsureGitignore(dir, GitignoreFragment...)
	require.NoError(t, err)
	before := readGitignore(t, dir)

	added, err := EnsureGitignore(dir, GitignoreFragment...)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, before, readGitignore(t, dir))
}

func TestEnsureGitignore_AppendsOnlyMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, GitignoreFile), []byte("venv/\n*.log"), 0o644))

	added, err := EnsureGitignore(dir, "# Secrets", ".env", "venv/")
	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, added)
	assert.Equal(t, "venv/\n*.log\n\n# Secrets\n.env\n", readGitignore(t, dir))

	assert.True(t, IsIgnored(dir, ".env"))
	assert.False(t, IsIgnored(dir, "# Secrets"))
	assert.False(t, IsIgnored(t.TempDir(), ".env"))
}

func TestEnsureGitignore_DropsCommentsOfSatisfiedGroups(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, GitignoreFile), []byte("venv/\n__pycache__/\n*.pyc\n"), 0o644))

	_, err := EnsureGitignore(dir, GitignoreFragment...)
	require.NoError(t, err)

	content := readGitignore(t, dir)
	assert.NotContains(t, content, "# Virtual Environment")
	assert.Contains(t, content, "# IDE Specific Files\n.idea/")
}
