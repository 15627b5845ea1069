// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging builds the diagnostic logger.
//
// Diagnostics are separate from user-facing output: the console prints what
// a command did, the logger records how. Logs go to stderr, warn level by
// default, debug with -v.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvFormat selects the log format ("text" or "json").
const EnvFormat = "PYINIT_LOG_FORMAT"

type Config struct {
	Level  slog.Level
	Format string
	Output io.Writer
}

// DefaultConfig returns warn-level text logging on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// ForFlags adjusts cfg for the --verbose flag and the PYINIT_LOG_FORMAT
// value.
func ForFlags(cfg Config, verbose bool, format string) Config {
	if verbose {
		cfg.Level = slog.LevelDebug
	}
	if f := strings.ToLower(strings.TrimSpace(format)); f != "" {
		cfg.Format = f
	}
	return cfg
}

// New returns a logger for cfg. A nil Output discards everything.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = io.Discard
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
