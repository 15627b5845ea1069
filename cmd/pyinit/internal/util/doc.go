// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package util provides the error taxonomy shared by every pyinit command.
//
// This is a leaf package with no dependencies on other internal packages.
//
// # Error Kinds
//
// Three sentinel kinds classify every failure a command can report:
//
//	util.ErrNotFound      project root or required file is missing
//	util.ErrExternalTool  a wrapped process exited non-zero or is not on PATH
//	util.ErrValidation    user input failed sanitization or validation
//
// [CommandError] carries the command line, exit code and stderr of a failed
// external tool and always matches ErrExternalTool. [OperationError] is the
// uniform "operation failed" wrapper a handler returns to the dispatcher:
//
//	if err := venv.Create(ctx); err != nil {
//	    return util.Fail("create virtual environment", root.Path(), err)
//	}
//
// The dispatcher prints the OperationError once and exits with ExitFailure.
// Any other error reaching the dispatcher is treated as a usage error and
// exits with ExitBadArgs.
package util
