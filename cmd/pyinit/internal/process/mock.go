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
	"sync"
)

// -----------------------------------------------------------------------------
// Mock Implementation for Testing
// -----------------------------------------------------------------------------

// MockRunner is a test double for Runner.
//
// Configure the mock by setting function fields before use. If a function
// field is nil and the corresponding method is called, it will panic.
// NewMockRunner returns a mock whose functions all succeed with no output.
//
// # Examples
//
//	mock := &MockRunner{
//	    OutputFunc: func(ctx context.Context, cmd Command) ([]byte, error) {
//	        if cmd.Name == "git" {
//	            return []byte("Ada\n"), nil
//	        }
//	        return nil, fmt.Errorf("unexpected command: %s", cmd)
//	    },
//	}
type MockRunner struct {
	// OutputFunc is called when Output is invoked
	OutputFunc func(ctx context.Context, cmd Command) ([]byte, error)

	// RunFunc is called when Run is invoked
	RunFunc func(ctx context.Context, cmd Command) error

	// LookPathFunc is called when LookPath is invoked
	LookPathFunc func(name string) (string, error)

	// Calls records all method invocations for verification
	Calls []Call

	mu sync.Mutex
}

// Call records a single method invocation.
type Call struct {
	Method string
	Name   string
	Args   []string
	Dir    string
}

// Line returns "name arg1 arg2".
func (c Call) Line() string {
	return Command{Name: c.Name, Args: c.Args}.String()
}

// NewMockRunner returns a MockRunner whose methods all succeed.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		OutputFunc:   func(context.Context, Command) ([]byte, error) { return nil, nil },
		RunFunc:      func(context.Context, Command) error { return nil },
		LookPathFunc: func(name string) (string, error) { return "/usr/bin/" + name, nil },
	}
}

func (m *MockRunner) record(method string, cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Method: method, Name: cmd.Name, Args: cmd.Args, Dir: cmd.Dir})
}

// Output delegates to OutputFunc and records the call.
func (m *MockRunner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	m.record("Output", cmd)
	if m.OutputFunc == nil {
		panic("MockRunner.OutputFunc not set")
	}
	return m.OutputFunc(ctx, cmd)
}

// Run delegates to RunFunc and records the call.
func (m *MockRunner) Run(ctx context.Context, cmd Command) error {
	m.record("Run", cmd)
	if m.RunFunc == nil {
		panic("MockRunner.RunFunc not set")
	}
	return m.RunFunc(ctx, cmd)
}

// LookPath delegates to LookPathFunc and records the call.
func (m *MockRunner) LookPath(name string) (string, error) {
	m.record("LookPath", Command{Name: name})
	if m.LookPathFunc == nil {
		panic("MockRunner.LookPathFunc not set")
	}
	return m.LookPathFunc(name)
}

// Reset clears all recorded calls.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// GetCalls returns a copy of all recorded calls.
func (m *MockRunner) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Call, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Lines returns the command line of every Output and Run call, in order.
func (m *MockRunner) Lines() []string {
	var lines []string
	for _, c := range m.GetCalls() {
		if c.Method == "LookPath" {
			continue
		}
		lines = append(lines, c.Line())
	}
	return lines
}

var _ Runner = (*MockRunner)(nil)
