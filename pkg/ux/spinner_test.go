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
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_NotAnimatedForBuffers(t *testing.T) {
	c, out, errOut := newTestConsole(PersonalityFull)

	s := c.NewSpinner("checking")
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestNewSpinner_RendersWithConsoleStyle(t *testing.T) {
	c, _, _ := newTestConsole(PersonalityStandard)

	s := c.NewSpinner("resolving")
	require.NotNil(t, s.render)
	assert.Contains(t, s.render("⠋"), "⠋")
	assert.Equal(t, SpinnerDots, s.spinType)
}

func TestSpinner_AnimatesAndClears(t *testing.T) {
	var w syncBuffer
	s := &Spinner{out: &w, render: func(s string) string { return s }, animate: true, message: "resolving"}

	s.Start()
	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), "resolving")
	}, time.Second, 10*time.Millisecond)
	s.UpdateMessage("rendering")
	s.Stop()

	assert.Contains(t, w.String(), "\r⠋ resolving")
	assert.True(t, strings.HasSuffix(w.String(), "\r\033[K"))
}

func TestSpinner_WithType(t *testing.T) {
	c, _, _ := newTestConsole(PersonalityStandard)
	s := c.NewSpinner("x").WithType(SpinnerCompass)
	assert.Equal(t, SpinnerCompass, s.spinType)
	assert.Len(t, spinnerFrames[s.spinType], 4)
}

func TestWithSpinner_ReturnsError(t *testing.T) {
	c, _, _ := newTestConsole(PersonalityMachine)
	boom := errors.New("boom")

	assert.NoError(t, c.WithSpinner("ok", func() error { return nil }))
	assert.ErrorIs(t, c.WithSpinner("fail", func() error { return boom }), boom)
}
