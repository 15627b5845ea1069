// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package depgraph

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

var (
	// ErrInvalidPattern indicates a malformed exclude glob.
	ErrInvalidPattern = fmt.Errorf("%w: invalid exclude pattern", util.ErrValidation)

	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = fmt.Errorf("%w: unknown graph format", util.ErrValidation)

	// ErrNotDirectory indicates the scan root is a file.
	ErrNotDirectory = errors.New("not a directory")
)
