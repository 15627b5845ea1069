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
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// TracedRunner decorates a Runner with a span, a debug log line and two
// metrics per external process.
type TracedRunner struct {
	next     Runner
	tracer   trace.Tracer
	logger   *slog.Logger
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// NewTracedRunner wraps next. Instrument creation failures fall back to
// no-op instruments so tracing never blocks a command.
func NewTracedRunner(next Runner, tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) *TracedRunner {
	if logger == nil {
		logger = slog.Default()
	}
	t := &TracedRunner{next: next, tracer: tracer, logger: logger.With("component", "process")}

	var err error
	if t.runs, err = meter.Int64Counter("pyinit.process.runs",
		metric.WithDescription("External tool invocations")); err != nil {
		t.logger.Debug("counter unavailable", "error", err)
	}
	if t.duration, err = meter.Float64Histogram("pyinit.process.duration",
		metric.WithDescription("External tool wall time"),
		metric.WithUnit("s")); err != nil {
		t.logger.Debug("histogram unavailable", "error", err)
	}
	return t
}

// Output traces and delegates to the wrapped runner.
func (t *TracedRunner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	var out []byte
	err := t.observe(ctx, "process.output", cmd, func(ctx context.Context) error {
		var err error
		out, err = t.next.Output(ctx, cmd)
		return err
	})
	return out, err
}

// Run traces and delegates to the wrapped runner.
func (t *TracedRunner) Run(ctx context.Context, cmd Command) error {
	return t.observe(ctx, "process.run", cmd, func(ctx context.Context) error {
		return t.next.Run(ctx, cmd)
	})
}

// LookPath delegates without tracing.
func (t *TracedRunner) LookPath(name string) (string, error) {
	return t.next.LookPath(name)
}

func (t *TracedRunner) observe(ctx context.Context, spanName string, cmd Command, fn func(context.Context) error) error {
	ctx, span := t.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("process.executable", cmd.Name),
		attribute.String("process.command_line", cmd.String()),
		attribute.String("process.working_directory", cmd.Dir),
	))
	defer span.End()

	t.logger.Debug("exec", "cmd", cmd.String(), "dir", cmd.Dir)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	code := 0
	var cmdErr *util.CommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode
	}
	attrs := metric.WithAttributes(
		attribute.String("process.executable", cmd.Name),
		attribute.Bool("process.failed", err != nil),
	)
	if t.runs != nil {
		t.runs.Add(ctx, 1, attrs)
	}
	if t.duration != nil {
		t.duration.Record(ctx, elapsed.Seconds(), attrs)
	}

	span.SetAttributes(attribute.Int("process.exit_code", code))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Debug("exec failed", "cmd", cmd.String(), "exit_code", code, "elapsed", elapsed)
		return err
	}
	t.logger.Debug("exec done", "cmd", cmd.String(), "elapsed", elapsed)
	return nil
}

var _ Runner = (*TracedRunner)(nil)
