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
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// fixtureGraph is A imports x; B imports x and y.
func fixtureGraph() *Graph {
	g := NewGraph()
	g.Add(ModuleReference{File: "B.py", Module: "y", Line: 2})
	g.Add(ModuleReference{File: "B.py", Module: "x", Line: 1})
	g.Add(ModuleReference{File: "A.py", Module: "x", Line: 1})
	return g
}

func quietRenderer(runner process.Runner) *Renderer {
	return NewRenderer(runner, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWriteText_Fixture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, fixtureGraph()))

	want := "x\n" +
		"├── A.py\n" +
		"└── B.py\n" +
		"y\n" +
		"└── B.py\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteReverse_Fixture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReverse(&buf, fixtureGraph()))

	want := "A.py\n" +
		"└── x\n" +
		"B.py\n" +
		"├── x\n" +
		"└── y\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_EmptyGraph(t *testing.T) {
	for _, f := range []Format{FormatText, FormatReverse} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, NewGraph(), f))
		assert.Equal(t, EmptyGraphMessage+"\n", buf.String())
	}

	var dot bytes.Buffer
	require.NoError(t, WriteDOT(&dot, NewGraph()))
	assert.Equal(t, "digraph imports {\n  rankdir=LR;\n  node [shape=box];\n\n}\n", dot.String())

	var js bytes.Buffer
	require.NoError(t, WriteJSON(&js, NewGraph()))
	assert.JSONEq(t, `{"modules": [], "edges": 0}`, js.String())
}

func TestWriteDOT_Fixture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, fixtureGraph()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph imports {\n  rankdir=LR;\n"))
	assert.Contains(t, out, `"file:A.py" [shape=ellipse];`)
	assert.Contains(t, out, `"module:x" [label="x"];`)
	assert.Contains(t, out, `"file:A.py" -> "module:x";`)
	assert.Contains(t, out, `"file:B.py" -> "module:y";`)
	assert.Equal(t, 3, strings.Count(out, "->"))
}

func TestWriteJSON_Fixture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, fixtureGraph()))

	var decoded jsonGraph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Modules, 2)
	assert.Equal(t, "x", decoded.Modules[0].Name)
	assert.Equal(t, []jsonFile{{Path: "A.py", Line: 1}, {Path: "B.py", Line: 1}}, decoded.Modules[0].Files)
	assert.Equal(t, 3, decoded.Edges)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("DOT")
	require.NoError(t, err)
	assert.Equal(t, FormatDOT, f)

	_, err = ParseFormat("yaml")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestIsImagePath(t *testing.T) {
	assert.True(t, IsImagePath("deps.PNG"))
	assert.True(t, IsImagePath("out/deps.svg"))
	assert.False(t, IsImagePath("deps.dot"))
	assert.False(t, IsImagePath("deps"))
}

func TestRenderer_Stdout(t *testing.T) {
	var buf bytes.Buffer
	res, err := quietRenderer(process.NewMockRunner()).Render(context.Background(), &buf, fixtureGraph(), RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, FormatText, res.Format)
	assert.Empty(t, res.Warning)
	assert.Contains(t, buf.String(), "└── B.py")
}

func TestRenderer_NonImageFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deps.dot")
	var buf bytes.Buffer

	res, err := quietRenderer(process.NewMockRunner()).Render(context.Background(), &buf, fixtureGraph(),
		RenderOptions{Format: FormatDOT, Output: out})
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph imports")
}

func TestRenderer_ImageViaDot(t *testing.T) {
	mock := process.NewMockRunner()
	var piped string
	mock.RunFunc = func(_ context.Context, cmd process.Command) error {
		data, err := io.ReadAll(cmd.Stdin)
		piped = string(data)
		return err
	}

	var buf bytes.Buffer
	res, err := quietRenderer(mock).Render(context.Background(), &buf, fixtureGraph(),
		RenderOptions{Output: "deps.svg"})
	require.NoError(t, err)

	assert.True(t, res.Image)
	assert.Empty(t, buf.String())
	assert.Equal(t, []string{"dot -Tsvg -o deps.svg"}, mock.Lines())
	assert.Contains(t, piped, `"file:A.py" -> "module:x";`)
}

func TestRenderer_DotMissingFallsBackToText(t *testing.T) {
	mock := process.NewMockRunner()
	mock.LookPathFunc = func(name string) (string, error) {
		return "", util.NewCommandError(name, -1, "", errors.New("executable file not found"))
	}

	var buf bytes.Buffer
	res, err := quietRenderer(mock).Render(context.Background(), &buf, fixtureGraph(),
		RenderOptions{Output: "deps.png"})
	require.NoError(t, err)

	assert.False(t, res.Image)
	assert.Equal(t, FormatText, res.Format)
	assert.Contains(t, res.Warning, "deps.png")
	assert.True(t, strings.HasPrefix(buf.String(), "x\n├── A.py\n"))
}

func TestRenderer_DotFailureFallsBackToText(t *testing.T) {
	mock := process.NewMockRunner()
	mock.RunFunc = func(_ context.Context, cmd process.Command) error {
		return util.NewCommandError(cmd.String(), 1, "syntax error", nil)
	}

	var buf bytes.Buffer
	res, err := quietRenderer(mock).Render(context.Background(), &buf, fixtureGraph(),
		RenderOptions{Output: "deps.png"})
	require.NoError(t, err)
	assert.Contains(t, res.Warning, "syntax error")
	assert.NotEmpty(t, buf.String())
}
