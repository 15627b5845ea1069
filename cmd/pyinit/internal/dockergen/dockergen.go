// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dockergen writes a multi-stage Dockerfile and a .dockerignore for
// a project.
package dockergen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"text/template"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
)

// DefaultPythonVersion is used when requires-python names no minimum.
const DefaultPythonVersion = "3.11"

const (
	DockerfileName   = "Dockerfile"
	DockerignoreName = ".dockerignore"
)

var minimumVersion = regexp.MustCompile(`>=\s*(\d+\.\d+)`)

// PythonVersion extracts the X.Y minimum from a requires-python specifier
// such as ">=3.12,<4".
func PythonVersion(requiresPython string) string {
	if m := minimumVersion.FindStringSubmatch(requiresPython); m != nil {
		return m[1]
	}
	return DefaultPythonVersion
}

// Spec holds the values substituted into the Dockerfile.
type Spec struct {
	PythonVersion string
	Package       string
}

var dockerfileTemplate = template.Must(template.New(DockerfileName).Parse(`# ---- Builder Stage ----
FROM python:{{.PythonVersion}}-slim AS builder

WORKDIR /app

RUN pip install --upgrade pip build

COPY pyproject.toml README.md* ./
COPY src ./src
RUN python -m build --wheel

# ---- Runner Stage ----
FROM python:{{.PythonVersion}}-slim

WORKDIR /app

RUN useradd --create-home --shell /bin/bash appuser

COPY --from=builder /app/dist/*.whl /tmp/
RUN pip install --no-cache-dir /tmp/*.whl && rm /tmp/*.whl

USER appuser

# Adjust if the entry point is not {{.Package}}.main
CMD ["python", "-m", "{{.Package}}.main"]
`))

const dockerignore = `# Git
.git
.gitignore

# Docker
Dockerfile
.dockerignore

# Python virtual environment
venv/
.venv/

# Python cache
__pycache__/
*.pyc

# Build artifacts
dist/
build/
*.egg-info/

# Secrets
.env

# IDE and OS files
.idea/
.vscode/
.DS_Store
`

// RenderDockerfile returns the Dockerfile for spec.
func RenderDockerfile(spec Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := dockerfileTemplate.Execute(&buf, spec); err != nil {
		return nil, fmt.Errorf("render %s: %w", DockerfileName, err)
	}
	return buf.Bytes(), nil
}

// Plan is what Write will produce.
type Plan struct {
	Spec             Spec
	DockerfilePath   string
	DockerignorePath string

	// Existing lists the target files that are already present.
	Existing []string
}

// NewPlan derives the Spec from the pyproject.toml of root.
func NewPlan(root project.Root, meta *project.Pyproject) *Plan {
	p := &Plan{
		Spec: Spec{
			PythonVersion: DefaultPythonVersion,
			Package:       meta.PackageName(project.SanitizeName(root.Name())),
		},
		DockerfilePath:   root.Join(DockerfileName),
		DockerignorePath: root.Join(DockerignoreName),
	}
	if meta != nil && meta.Project.RequiresPython != "" {
		p.Spec.PythonVersion = PythonVersion(meta.Project.RequiresPython)
	}
	for _, path := range []string{p.DockerfilePath, p.DockerignorePath} {
		if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
			p.Existing = append(p.Existing, path)
		}
	}
	return p
}

// Write creates or overwrites both files.
func (p *Plan) Write() error {
	dockerfile, err := RenderDockerfile(p.Spec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.DockerfilePath, dockerfile, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", DockerfileName, err)
	}
	if err := os.WriteFile(p.DockerignorePath, []byte(dockerignore), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", DockerignoreName, err)
	}
	return nil
}
