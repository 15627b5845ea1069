// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Step is one forward action and the action that undoes it.
//
// # Example
//
//	resilience.Step{
//	    Name:       "create project folder",
//	    Execute:    func(context.Context) error { return os.Mkdir(dir, 0o755) },
//	    Compensate: func(context.Context) error { return os.RemoveAll(dir) },
//	}
//
// # Assumptions
//
//   - Compensate may be nil when there is nothing to undo
//   - Compensate tolerates the state being already undone
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// CompensationError records an undo action that itself failed.
type CompensationError struct {
	StepName string
	Err      error
}

func (e CompensationError) Error() string {
	return fmt.Sprintf("undo %q: %v", e.StepName, e.Err)
}

// StepError is returned by Execute when a step fails.
type StepError struct {
	// Step is the name of the failed step.
	Step string

	// Err is the step's error.
	Err error

	// Compensations lists undo actions that failed. Empty means the
	// rollback was clean.
	Compensations []CompensationError
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Step, e.Err)
	if len(e.Compensations) > 0 {
		msg += fmt.Sprintf(" (rollback incomplete: %d undo step(s) failed)", len(e.Compensations))
	}
	return msg
}

func (e *StepError) Unwrap() error { return e.Err }

// Saga runs steps in order and rolls back on failure.
//
// # Thread Safety
//
// A Saga is used from one goroutine.
type Saga struct {
	steps     []Step
	completed []string
	logger    *slog.Logger
}

// NewSaga returns an empty saga. A nil logger discards step logs.
func NewSaga(logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Saga{logger: logger.With("component", "saga")}
}

// AddStep appends a step and returns the saga for chaining.
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs every step.
//
// # Description
//
// On the first failure, the compensations of completed steps run in
// reverse order under a context that is not cancelled with ctx, so an
// interrupt still cleans up. A cancelled ctx between steps counts as a
// failure of the next step.
//
// # Outputs
//
// nil when every step succeeded, otherwise a *StepError wrapping the
// step's error.
func (s *Saga) Execute(ctx context.Context) error {
	s.completed = s.completed[:0]
	done := make([]Step, 0, len(s.steps))

	for _, step := range s.steps {
		err := ctx.Err()
		if err == nil {
			s.logger.Debug("executing step", "step", step.Name)
			err = step.Execute(ctx)
		}
		if err != nil {
			s.logger.Debug("step failed", "step", step.Name, "error", err)
			return &StepError{
				Step:          step.Name,
				Err:           err,
				Compensations: s.compensate(context.WithoutCancel(ctx), done),
			}
		}
		done = append(done, step)
		s.completed = append(s.completed, step.Name)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step) []CompensationError {
	var failures []CompensationError
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Warn("compensation failed", "step", step.Name, "error", err)
			failures = append(failures, CompensationError{StepName: step.Name, Err: err})
			continue
		}
		s.logger.Debug("compensated step", "step", step.Name)
	}
	return failures
}

// CompletedSteps returns the names of the steps that succeeded during the
// last Execute, in order.
func (s *Saga) CompletedSteps() []string {
	return append([]string(nil), s.completed...)
}

// RollbackFailed reports whether err is a StepError whose rollback left
// state behind.
func RollbackFailed(err error) bool {
	var se *StepError
	return errors.As(err, &se) && len(se.Compensations) > 0
}
