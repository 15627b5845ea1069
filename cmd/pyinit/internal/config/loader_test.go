// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/depgraph"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

func envMap(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyinit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
python: /opt/python3.12/bin/python3
venv_dir: .venv
default_template: cli
personality: minimal
graph:
  exclude: ["docs/**"]
  top_level: true
clean:
  patterns: ["**/*.log"]
`)
	cfg, err := Load(path, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "/opt/python3.12/bin/python3", cfg.Python)
	assert.Equal(t, ".venv", cfg.VenvDir)
	assert.Equal(t, "cli", cfg.DefaultTemplate)
	assert.Equal(t, "minimal", cfg.Personality)
	assert.Equal(t, []string{"docs/**"}, cfg.Graph.Exclude)
	assert.True(t, cfg.Graph.TopLevel)
	assert.Equal(t, []string{"**/*.log"}, cfg.Clean.Patterns)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "venv_dir: env2\n")
	cfg, err := Load(path, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "env2", cfg.VenvDir)
	assert.Equal(t, DefaultPython(), cfg.Python)
	assert.Equal(t, "app", cfg.DefaultTemplate)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "python: python3.10\nvenv_dir: env\n")
	cfg, err := Load(path, envMap(map[string]string{
		EnvPython:       "python3.13",
		EnvVenvDir:      ".venv",
		EnvTemplatesDir: "/srv/templates",
	}))
	require.NoError(t, err)
	assert.Equal(t, "python3.13", cfg.Python)
	assert.Equal(t, ".venv", cfg.VenvDir)
	assert.Equal(t, "/srv/templates", cfg.TemplatesDir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "python: [unclosed\n")
	_, err := Load(path, envMap(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad personality", "personality: loud\n", "personality"},
		{"venv with slash", "venv_dir: a/b\n", "venv_dir"},
		{"empty python", "python: \"\"\n", "python"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), envMap(nil))
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrValidation))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath(envMap(map[string]string{EnvConfigPath: "/tmp/custom.yaml"}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", p)

	p, err = DefaultPath(envMap(nil))
	if err != nil {
		t.Skip("no home directory in this environment")
	}
	assert.Equal(t, "pyinit.yaml", filepath.Base(p))
	assert.Equal(t, ".pyinit", filepath.Base(filepath.Dir(p)))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "pyinit.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg PyinitConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, DefaultPython(), cfg.Python)
	assert.Equal(t, "venv", cfg.VenvDir)

	err = WriteDefault(path)
	assert.True(t, errors.Is(err, util.ErrValidation), "second write must refuse to overwrite")
}

func TestScanOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VenvDir = ".env-py"
	cfg.Graph.Exclude = []string{"docs/**"}
	cfg.Graph.TopLevel = true

	opts := cfg.ScanOptions()
	assert.True(t, opts.TopLevel)
	assert.Subset(t, opts.Exclude, depgraph.DefaultExcludes)
	assert.Contains(t, opts.Exclude, ".env-py")
	assert.Contains(t, opts.Exclude, "docs/**")
	assert.Len(t, depgraph.DefaultExcludes, len(opts.Exclude)-2, "defaults must not be mutated")
}
