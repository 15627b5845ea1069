// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// truncate Tests
// =============================================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world this is a long string", 10, "hello w..."},
		{"hello", 3, "..."},
		{"", 10, ""},
		{"hello", 4, "h..."},
		{"héllo wörld", 6, "hél..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen), tt.in)
	}
}

// =============================================================================
// Theme Tests
// =============================================================================

func TestPyinitTheme_ReturnsNonNil(t *testing.T) {
	require.NotNil(t, pyinitTheme())
}

// =============================================================================
// InteractivePrompter Tests
// =============================================================================

func TestInteractivePrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewInteractivePrompterWithIO(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Delete venv?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Delete venv? [y/N]: ", out.String())
		})
	}
}

func TestInteractivePrompter_Confirm_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewInteractivePrompterWithIO(strings.NewReader("y\n"), &bytes.Buffer{})
	_, err := p.Confirm(ctx, "Proceed?")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestInteractivePrompter_Select(t *testing.T) {
	var out bytes.Buffer
	p := NewInteractivePrompterWithIO(strings.NewReader("2\n"), &out)

	options := []PromptOption{
		{Label: "mit", Description: "MIT License"},
		{Label: "gpl-3.0", Recommended: true},
	}
	idx, err := p.Select(context.Background(), "Pick a license", options)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "  1. mit - MIT License")
	assert.Contains(t, out.String(), "  2. gpl-3.0 (recommended)")
	assert.Contains(t, out.String(), "Enter choice [1-2]: ")
}

func TestInteractivePrompter_Select_Invalid(t *testing.T) {
	for _, input := range []string{"0\n", "3\n", "abc\n", ""} {
		p := NewInteractivePrompterWithIO(strings.NewReader(input), &bytes.Buffer{})
		_, err := p.Select(context.Background(), "Pick", []PromptOption{{Label: "a"}, {Label: "b"}})
		assert.True(t, errors.Is(err, ErrInvalidSelection), input)
	}
}

func TestInteractivePrompter_Select_NoOptions(t *testing.T) {
	p := NewInteractivePrompterWithIO(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := p.Select(context.Background(), "Pick", nil)
	assert.True(t, errors.Is(err, ErrNoOptions))
}

// =============================================================================
// NonInteractive and Mock Tests
// =============================================================================

func TestNonInteractivePrompter(t *testing.T) {
	yes := &NonInteractivePrompter{Assume: true}
	ok, err := yes.Confirm(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)

	idx, err := yes.Select(context.Background(), "p", []PromptOption{{Label: "a"}, {Label: "b", Recommended: true}})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestNewPrompter_AssumeYes(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{}, true)
	_, ok := p.(*NonInteractivePrompter)
	assert.True(t, ok)

	p = NewPrompter(strings.NewReader(""), &bytes.Buffer{}, false)
	_, ok = p.(*InteractivePrompter)
	assert.True(t, ok)
}

func TestMockPrompter_RecordsMessages(t *testing.T) {
	m := &MockPrompter{ConfirmFunc: func(string) (bool, error) { return true, nil }}

	ok, err := m.Confirm(context.Background(), "Overwrite Dockerfile?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Overwrite Dockerfile?"}, m.Messages)
}
