// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resilience runs multi-step filesystem operations that must not
// leave a half-built project behind.
//
// A [Saga] is an ordered list of steps, each with an optional compensation.
// When a step fails, the compensations of the steps that already succeeded
// run in reverse order. `pyinit new` uses it to delete the partially
// rendered folder; `pyinit init` uses it to move the user's original
// scripts back where they were.
//
// Steps run on the calling goroutine, one after another.
package resilience
