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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

const samplePyproject = `[build-system]
requires = ["setuptools>=61.0"]
build-backend = "setuptools.build_meta"

[project]
name = "My-Demo"
version = "1.4.2"
description = "A demo project"
requires-python = ">=3.10"
license = { text = "MIT" }
authors = [{ name = "Ada", email = "ada@example.com" }, { name = "Bob" }]
dependencies = [
    "requests[socks]>=2.31; python_version > '3.8'",
    "click==8.1.7",
    "Flask",
]

[project.optional-dependencies]
dev = ["pytest~=8.0", "requests"]
docs = ["mkdocs (>=1.5)"]
`

func TestParsePyproject(t *testing.T) {
	p, err := ParsePyproject([]byte(samplePyproject))
	require.NoError(t, err)

	assert.Equal(t, "My-Demo", p.Project.Name)
	assert.Equal(t, "1.4.2", p.Project.Version)
	assert.Equal(t, ">=3.10", p.Project.RequiresPython)
	assert.Equal(t, "MIT", p.LicenseName())
	assert.Equal(t, []string{"Ada <ada@example.com>", "Bob"}, p.AuthorNames())
	assert.Equal(t, "setuptools.build_meta", p.BuildSystem.BuildBackend)
	assert.Equal(t, "my_demo", p.PackageName("fallback"))
}

func TestPyproject_DependencyNames(t *testing.T) {
	p, err := ParsePyproject([]byte(samplePyproject))
	require.NoError(t, err)

	assert.Equal(t, []string{"Flask", "click", "mkdocs", "pytest", "requests"}, p.DependencyNames())
}

func TestPyproject_LicenseForms(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"string", "[project]\nlicense = \"Apache-2.0\"\n", "Apache-2.0"},
		{"text table", "[project]\nlicense = { text = \"MIT\" }\n", "MIT"},
		{"file table", "[project]\nlicense = { file = \"LICENSE\" }\n", "see LICENSE"},
		{"missing", "[project]\nname = \"x\"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePyproject([]byte(tt.toml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.LicenseName())
		})
	}
}

func TestParsePyproject_Invalid(t *testing.T) {
	_, err := ParsePyproject([]byte("[project\nname = "))
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestReadPyproject_Missing(t *testing.T) {
	_, err := ReadPyproject(filepath.Join(t.TempDir(), MarkerFile))
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestPackageName_Fallback(t *testing.T) {
	var p *Pyproject
	assert.Equal(t, "my_dir", p.PackageName("My Dir"))
	assert.Equal(t, "other", (&Pyproject{}).PackageName("other"))
}

func TestRequirementName(t *testing.T) {
	tests := map[string]string{
		"requests":                     "requests",
		"requests>=2.0":                "requests",
		"  numpy ==1.26 ":              "numpy",
		"uvicorn[standard]":            "uvicorn",
		"pkg @ https://example.com/x":  "pkg",
		"typing-extensions; python<3":  "typing-extensions",
		"black~=24.1":                  "black",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, RequirementName(in), in)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "typing-extensions", NormalizeName("Typing_Extensions"))
	assert.Equal(t, "zope-interface", NormalizeName("zope.interface"))
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"My Cool-App!":  "my_cool_app",
		"already_ok":    "already_ok",
		"  spaced  out": "spaced_out",
		"Dash--Dash":    "dash_dash",
		"日本":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestValidatePackageName(t *testing.T) {
	assert.NoError(t, ValidatePackageName("demo_app"))
	assert.NoError(t, ValidatePackageName("_private"))

	for _, bad := range []string{"", "1app", "class", "has-dash", "with space"} {
		err := ValidatePackageName(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, util.ErrValidation), bad)
	}
}
