// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package project

import (
	"regexp"
)

// tableHeader matches [table] and [[array.table]] header lines, capturing
// the table name.
var tableHeader = regexp.MustCompile(`(?m)^[ \t]*\[\[?[ \t]*([^\]\n]+?)[ \t]*\]\]?[ \t]*(?:#.*)?$`)

// TableRange returns the byte range of the body of the first [name] table
// in TOML content: from the end of its header line to the next header or
// the end of the file.
//
// # Limitations
//
// Header detection is line based, so a header-shaped line inside a
// multi-line string ends the range early.
func TableRange(content []byte, name string) (start, end int, ok bool) {
	headers := tableHeader.FindAllSubmatchIndex(content, -1)
	for i, h := range headers {
		if string(content[h[2]:h[3]]) != name {
			continue
		}
		start = h[1]
		end = len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		return start, end, true
	}
	return 0, 0, false
}
