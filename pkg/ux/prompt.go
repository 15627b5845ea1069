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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrInvalidSelection is returned when the user picks a number outside
	// the offered range.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNoOptions is returned when Select is called without options.
	ErrNoOptions = errors.New("no options to select from")
)

// PromptOption is one choice offered by Select.
type PromptOption struct {
	Label       string
	Description string
	Value       string
	Recommended bool
}

// Prompter asks the user questions.
//
// # Thread Safety
//
// Implementations are used from a single goroutine.
type Prompter interface {
	// Confirm asks a yes/no question. Anything other than y or yes
	// (case-insensitive) is no, and so is end of input.
	Confirm(ctx context.Context, message string) (bool, error)

	// Select asks the user to choose one option and returns its index.
	Select(ctx context.Context, prompt string, options []PromptOption) (int, error)
}

// NewPrompter picks the prompter for the session: NonInteractivePrompter
// when assumeYes is set, a huh form when both in and out are terminals, and
// the line-based InteractivePrompter otherwise.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) Prompter {
	switch {
	case assumeYes:
		return &NonInteractivePrompter{Assume: true}
	case IsTerminal(in) && IsTerminal(out):
		return NewFormPrompter(in, out)
	default:
		return NewInteractivePrompterWithIO(in, out)
	}
}

// =============================================================================
// Line-based Prompter
// =============================================================================

// InteractivePrompter reads answers line by line.
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompterWithIO returns a prompter reading from r and
// writing questions to w.
func NewInteractivePrompterWithIO(r io.Reader, w io.Writer) *InteractivePrompter {
	return &InteractivePrompter{reader: bufio.NewReader(r), writer: w}
}

// Confirm prints "message [y/N]: " and reads one line.
func (p *InteractivePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.writer, "%s [y/N]: ", message)

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Select prints a numbered list and reads a 1-based choice.
func (p *InteractivePrompter) Select(ctx context.Context, prompt string, options []PromptOption) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fmt.Fprintln(p.writer, prompt)
	for i, opt := range options {
		line := fmt.Sprintf("  %d. %s", i+1, opt.Label)
		if opt.Recommended {
			line += " (recommended)"
		}
		if opt.Description != "" {
			line += " - " + truncate(opt.Description, 60)
		}
		fmt.Fprintln(p.writer, line)
	}
	fmt.Fprintf(p.writer, "Enter choice [1-%d]: ", len(options))

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read choice: %w", err)
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, strings.TrimSpace(line))
	}
	return n - 1, nil
}

// =============================================================================
// Form Prompter
// =============================================================================

// FormPrompter renders prompts as huh forms for terminal sessions.
type FormPrompter struct {
	in    io.Reader
	out   io.Writer
	theme *huh.Theme
}

// NewFormPrompter returns a huh-backed prompter.
func NewFormPrompter(in io.Reader, out io.Writer) *FormPrompter {
	return &FormPrompter{in: in, out: out, theme: pyinitTheme()}
}

// Confirm shows a yes/no dialog defaulting to no.
func (p *FormPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	var answer bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	)).WithTheme(p.theme).WithInput(p.in).WithOutput(p.out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return answer, nil
}

// Select shows a single-choice list.
func (p *FormPrompter) Select(ctx context.Context, prompt string, options []PromptOption) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}

	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		label := o.Label
		if o.Recommended {
			label += " (recommended)"
		}
		opts[i] = huh.NewOption(label, i)
	}

	var choice int
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().Title(prompt).Options(opts...).Value(&choice),
	)).WithTheme(p.theme).WithInput(p.in).WithOutput(p.out)

	if err := form.RunWithContext(ctx); err != nil {
		return 0, err
	}
	return choice, nil
}

// pyinitTheme is the huh theme matching the Console palette.
func pyinitTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorSlate)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorYellow)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorBlue)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorBlue)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorSlate)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorSlate)

	return t
}

// truncate shortens s to maxLen runes, ending with "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

// =============================================================================
// Non-interactive and Mock Prompters
// =============================================================================

// NonInteractivePrompter answers every question without asking.
type NonInteractivePrompter struct {
	// Assume is the answer given to every Confirm.
	Assume bool
}

// Confirm returns Assume.
func (p *NonInteractivePrompter) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.Assume, nil
}

// Select returns the recommended option, or the first one.
func (p *NonInteractivePrompter) Select(ctx context.Context, _ string, options []PromptOption) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for i, o := range options {
		if o.Recommended {
			return i, nil
		}
	}
	return 0, nil
}

// MockPrompter is a test double for Prompter. Unset functions answer
// "no" and the first option.
type MockPrompter struct {
	ConfirmFunc func(message string) (bool, error)
	SelectFunc  func(prompt string, options []PromptOption) (int, error)

	// Messages records every question asked.
	Messages []string

	mu sync.Mutex
}

// Confirm records message and delegates to ConfirmFunc.
func (m *MockPrompter) Confirm(_ context.Context, message string) (bool, error) {
	m.mu.Lock()
	m.Messages = append(m.Messages, message)
	m.mu.Unlock()
	if m.ConfirmFunc == nil {
		return false, nil
	}
	return m.ConfirmFunc(message)
}

// Select records prompt and delegates to SelectFunc.
func (m *MockPrompter) Select(_ context.Context, prompt string, options []PromptOption) (int, error) {
	m.mu.Lock()
	m.Messages = append(m.Messages, prompt)
	m.mu.Unlock()
	if m.SelectFunc == nil {
		return 0, nil
	}
	return m.SelectFunc(prompt, options)
}

// Compile-time interface compliance check.
var (
	_ Prompter = (*InteractivePrompter)(nil)
	_ Prompter = (*FormPrompter)(nil)
	_ Prompter = (*NonInteractivePrompter)(nil)
	_ Prompter = (*MockPrompter)(nil)
)
