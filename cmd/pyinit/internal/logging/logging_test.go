// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	logger := New(cfg)
	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown", "file", "a.py")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "file=a.py")
}

func TestForFlags_VerboseJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := ForFlags(DefaultConfig(), true, " JSON ")
	cfg.Output = &buf

	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	New(cfg).With("component", "scanner").Debug("walk", "root", "/p")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "walk", rec["msg"])
	assert.Equal(t, "scanner", rec["component"])
	assert.Equal(t, "/p", rec["root"])
}

func TestForFlags_KeepsDefaults(t *testing.T) {
	cfg := ForFlags(DefaultConfig(), false, "")
	assert.Equal(t, slog.LevelWarn, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}

func TestNilOutput(t *testing.T) {
	assert.NotPanics(t, func() {
		New(Config{}).Error("dropped")
	})
}
