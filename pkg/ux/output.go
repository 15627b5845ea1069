// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output and prompts for the pyinit CLI.
//
// There is no global console. main builds one [Console] for the process
// and hands it to every command, so tests can capture output with a
// bytes.Buffer.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// pyinit color palette
var (
	ColorBlue    = lipgloss.Color("#3776AB") // Primary blue - titles, verbs
	ColorYellow  = lipgloss.Color("#FFD43B") // Accent yellow - highlights
	ColorSlate   = lipgloss.Color("#5C6770") // Slate - muted text, borders
	ColorSuccess = lipgloss.Color("#2EA043") // Green for success
	ColorWarning = lipgloss.Color("#D29922") // Amber for warnings
	ColorError   = lipgloss.Color("#E5534B") // Red for errors
)

// Styles holds the lipgloss styles a Console renders with.
type Styles struct {
	Title     lipgloss.Style
	Verb      lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Key       lipgloss.Style
	Box       lipgloss.Style
}

// NewStyles builds Styles bound to r, so color output follows the
// capabilities of the writer r was created for.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(ColorBlue),
		Verb:      r.NewStyle().Bold(true).Foreground(ColorBlue),
		Bold:      r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Foreground(ColorSlate),
		Success:   r.NewStyle().Foreground(ColorSuccess),
		Warning:   r.NewStyle().Foreground(ColorWarning),
		Error:     r.NewStyle().Foreground(ColorError),
		Highlight: r.NewStyle().Foreground(ColorYellow).Bold(true),
		Key:       r.NewStyle().Foreground(ColorSlate).Width(18),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1),
	}
}

// Icon provides status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// =============================================================================
// Console
// =============================================================================

// Console is the output sink handed to every command handler.
//
// # Description
//
// Normal output goes to Out; warnings and errors go to Err. The
// personality level decides how much decoration is printed: machine level
// prints stable, prefix-tagged plain text and nothing decorative.
//
// # Example
//
//	var out, errOut bytes.Buffer
//	c := ux.NewConsole(&out, &errOut, ux.PersonalityMachine)
//	c.Success("project created")
//	// out: "OK: project created\n"
type Console struct {
	out    io.Writer
	err    io.Writer
	level  PersonalityLevel
	styles Styles
}

// NewConsole returns a Console writing to out and errOut.
func NewConsole(out, errOut io.Writer, level PersonalityLevel) *Console {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Console{
		out:    out,
		err:    errOut,
		level:  level,
		styles: NewStyles(lipgloss.NewRenderer(out)),
	}
}

// Out returns the standard output writer.
func (c *Console) Out() io.Writer { return c.out }

// Err returns the error output writer.
func (c *Console) Err() io.Writer { return c.err }

// Level returns the personality level.
func (c *Console) Level() PersonalityLevel { return c.level }

// IsMachine reports whether output must stay plain.
func (c *Console) IsMachine() bool { return c.level == PersonalityMachine }

// Printf writes formatted text to Out without decoration.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Println writes a line to Out without decoration.
func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// Title prints a styled heading. Nothing is printed in machine mode.
func (c *Console) Title(text string) {
	if c.IsMachine() {
		return
	}
	fmt.Fprintln(c.out, c.styles.Title.Render(text))
}

// Step announces an action, e.g. Step("Creating", "project demo").
func (c *Console) Step(verb, text string) {
	switch c.level {
	case PersonalityMachine:
		fmt.Fprintf(c.out, "%s %s\n", strings.ToUpper(verb), text)
	case PersonalityMinimal:
		fmt.Fprintf(c.out, "%12s %s\n", verb, text)
	default:
		fmt.Fprintf(c.out, "%s %s\n", c.styles.Verb.Render(fmt.Sprintf("%12s", verb)), text)
	}
}

// Success prints a success message with checkmark
func (c *Console) Success(text string) {
	switch c.level {
	case PersonalityMachine:
		fmt.Fprintf(c.out, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(c.out, "%s %s\n", IconSuccess, text)
	default:
		fmt.Fprintf(c.out, "%s %s\n", c.styles.Success.Render(string(IconSuccess)), c.styles.Success.Render(text))
	}
}

// Warning prints a warning message to Err.
func (c *Console) Warning(text string) {
	switch c.level {
	case PersonalityMachine:
		fmt.Fprintf(c.err, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(c.err, "%s %s\n", IconWarning, text)
	default:
		fmt.Fprintf(c.err, "%s %s\n", c.styles.Warning.Render(string(IconWarning)), c.styles.Warning.Render(text))
	}
}

// Error prints an error message to Err.
func (c *Console) Error(text string) {
	switch c.level {
	case PersonalityMachine:
		fmt.Fprintf(c.err, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(c.err, "%s %s\n", IconError, text)
	default:
		fmt.Fprintf(c.err, "%s %s\n", c.styles.Error.Render(string(IconError)), c.styles.Error.Render(text))
	}
}

// Info prints an informational message
func (c *Console) Info(text string) {
	if c.IsMachine() {
		fmt.Fprintln(c.out, text)
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", c.styles.Muted.Render("│"), text)
}

// Muted prints secondary text. Nothing is printed in machine mode.
func (c *Console) Muted(text string) {
	if c.IsMachine() {
		return
	}
	fmt.Fprintln(c.out, c.styles.Muted.Render(text))
}

// Tip prints a hint, only at the full personality level.
func (c *Console) Tip(text string) {
	if c.level != PersonalityFull {
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", c.styles.Highlight.Render("tip:"), c.styles.Muted.Render(text))
}

// KeyValue prints an aligned "key value" row.
func (c *Console) KeyValue(key, value string) {
	if c.IsMachine() {
		fmt.Fprintf(c.out, "%s: %s\n", key, value)
		return
	}
	fmt.Fprintf(c.out, "  %s %s\n", c.styles.Key.Render(key), value)
}

// Bullet prints an indented list item.
func (c *Console) Bullet(text string) {
	if c.IsMachine() {
		fmt.Fprintf(c.out, "- %s\n", text)
		return
	}
	fmt.Fprintf(c.out, "  %s %s\n", c.styles.Muted.Render(string(IconBullet)), text)
}

// Check prints one result line of a health check.
func (c *Console) Check(status Icon, label, detail string) {
	switch c.level {
	case PersonalityMachine:
		fmt.Fprintf(c.out, "%s\t%s\t%s\n", machineStatus(status), label, detail)
	case PersonalityMinimal:
		if detail != "" {
			fmt.Fprintf(c.out, "%s %s (%s)\n", status, label, detail)
			return
		}
		fmt.Fprintf(c.out, "%s %s\n", status, label)
	default:
		line := fmt.Sprintf("%s %s", c.renderIcon(status), label)
		if detail != "" {
			line += " " + c.styles.Muted.Render("("+detail+")")
		}
		fmt.Fprintln(c.out, line)
	}
}

// Summary prints "N/M checks passed".
func (c *Console) Summary(passed, total int) {
	if c.IsMachine() {
		fmt.Fprintf(c.out, "SUMMARY: passed=%d total=%d\n", passed, total)
		return
	}
	style := c.styles.Success
	if passed < total {
		style = c.styles.Warning
	}
	fmt.Fprintf(c.out, "\n%s %s\n", style.Render(fmt.Sprintf("%d/%d", passed, total)), c.styles.Muted.Render("checks passed"))
}

// Box prints content in a rounded box.
func (c *Console) Box(title, content string) {
	if c.IsMachine() {
		fmt.Fprintf(c.out, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(c.out, c.styles.Box.Render(c.styles.Title.Render(title)+"\n"+content))
}

func (c *Console) renderIcon(i Icon) string {
	switch i {
	case IconSuccess:
		return c.styles.Success.Render(string(i))
	case IconWarning:
		return c.styles.Warning.Render(string(i))
	case IconError:
		return c.styles.Error.Render(string(i))
	case IconPending:
		return c.styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

func machineStatus(i Icon) string {
	switch i {
	case IconSuccess:
		return "PASS"
	case IconWarning:
		return "WARN"
	case IconError:
		return "FAIL"
	default:
		return "INFO"
	}
}
