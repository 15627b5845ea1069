// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "git", Cmd("git").String())
	assert.Equal(t, "python -m pip install requests", Cmd("python", "-m", "pip", "install", "requests").String())
}

func TestCommand_BuildersCopy(t *testing.T) {
	base := Cmd("ls")
	in := base.In("/tmp")

	assert.Equal(t, "", base.Dir)
	assert.Equal(t, "/tmp", in.Dir)
}

// =============================================================================
// ExecRunner Tests
// =============================================================================

func TestExecRunner_Output(t *testing.T) {
	requireShell(t)

	out, err := NewExecRunner().Output(context.Background(), Cmd("sh", "-c", "echo hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestExecRunner_Output_FailureCarriesStderrAndExitCode(t *testing.T) {
	requireShell(t)

	_, err := NewExecRunner().Output(context.Background(), Cmd("sh", "-c", "echo oops >&2; exit 3"))
	require.Error(t, err)

	var cmdErr *util.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "oops", cmdErr.Stderr)
	assert.True(t, errors.Is(err, util.ErrExternalTool))
}

func TestExecRunner_Run_StreamsOutput(t *testing.T) {
	requireShell(t)

	var stdout, stderr bytes.Buffer
	cmd := Cmd("sh", "-c", "echo out; echo err >&2").Streaming(&stdout, &stderr)

	require.NoError(t, NewExecRunner().Run(context.Background(), cmd))
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecRunner_Run_InDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	var stdout bytes.Buffer
	cmd := Cmd("sh", "-c", "pwd").In(dir).Streaming(&stdout, nil)

	require.NoError(t, NewExecRunner().Run(context.Background(), cmd))
	assert.Equal(t, filepath.Base(dir), filepath.Base(strings.TrimSpace(stdout.String())))
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	_, err := NewExecRunner().Output(context.Background(), Cmd("pyinit-definitely-missing-tool"))
	require.Error(t, err)

	var cmdErr *util.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -1, cmdErr.ExitCode)
	assert.True(t, errors.Is(err, exec.ErrNotFound))

	_, err = NewExecRunner().LookPath("pyinit-definitely-missing-tool")
	assert.True(t, errors.Is(err, util.ErrExternalTool))
}

func TestTailBuffer_KeepsLastBytes(t *testing.T) {
	tb := &tailBuffer{max: 5}
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defgh"))
	assert.Equal(t, "defgh", tb.String())
}

// =============================================================================
// TracedRunner Tests
// =============================================================================

func TestTracedRunner_RecordsSpanPerProcess(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	mock := NewMockRunner()
	mock.RunFunc = func(context.Context, Command) error {
		return util.NewCommandError("ruff check", 1, "E501", nil)
	}

	traced := NewTracedRunner(mock, provider.Tracer("test"), metricnoop.NewMeterProvider().Meter("test"), nil)

	_, err := traced.Output(context.Background(), Cmd("git", "status"))
	require.NoError(t, err)
	err = traced.Run(context.Background(), Cmd("ruff", "check"))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "process.output", spans[0].Name())
	assert.Equal(t, "process.run", spans[1].Name())
	assert.Equal(t, "Error", spans[1].Status().Code.String())

	assert.Equal(t, []string{"git status", "ruff check"}, mock.Lines())
}

// =============================================================================
// MockRunner Tests
// =============================================================================

func TestMockRunner_PanicsWhenUnset(t *testing.T) {
	m := &MockRunner{}
	assert.Panics(t, func() { _ = m.Run(context.Background(), Cmd("x")) })
}

func TestMockRunner_RecordsAndResets(t *testing.T) {
	m := NewMockRunner()
	_, _ = m.Output(context.Background(), Cmd("pip", "list").In("/p"))
	_, _ = m.LookPath("dot")

	calls := m.GetCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/p", calls[0].Dir)
	assert.Equal(t, []string{"pip list"}, m.Lines())

	m.Reset()
	assert.Empty(t, m.GetCalls())
}
