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
	"testing"

	"github.com/stretchr/testify/assert"
)

func modulesOf(imports []Import) []string {
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		out = append(out, imp.Module)
	}
	return out
}

func TestExtractImports(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"plain", "import os", []string{"os"}},
		{"dotted", "import os.path", []string{"os.path"}},
		{"multiple", "import os, sys", []string{"os", "sys"}},
		{"alias", "import numpy as np, pandas as pd", []string{"numpy", "pandas"}},
		{"from", "from collections import OrderedDict", []string{"collections"}},
		{"from dotted", "from os.path import join, exists", []string{"os.path"}},
		{"relative sibling", "from . import utils", []string{".utils"}},
		{"relative siblings", "from . import (a, b as c)", []string{".a", ".b"}},
		{"relative package", "from ..core import engine", []string{"..core"}},
		{"relative star", "from . import *", []string{"."}},
		{"indented", "    import json", []string{"json"}},
		{"tab indented", "\tfrom typing import Any", []string{"typing"}},
		{"trailing comment", "import re  # regex", []string{"re"}},
		{"semicolon", "import a; import b", []string{"a", "b"}},
		{"continuation paren", "from x import (", []string{"x"}},
		{"commented out", "# import os", nil},
		{"not an import", "important = True", nil},
		{"from prefix word", "fromage = 1", nil},
		{"bare import keyword", "import", nil},
		{"invalid module", "import 3d", nil},
		{"crlf", "import os\r\nimport sys\r\n", []string{"os", "sys"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := modulesOf(ExtractImports(tt.src))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractImports_LineNumbers(t *testing.T) {
	src := "\"\"\"doc\"\"\"\n\nimport os\n\ndef f():\n    from sys import argv\n"
	got := ExtractImports(src)

	assert.Equal(t, []Import{{Module: "os", Line: 3}, {Module: "sys", Line: 6}}, got)
}

func TestExtractImports_ToleratesGarbage(t *testing.T) {
	src := "def broken(:\n  import requests\n)))\nfrom import x\n"
	assert.Equal(t, []string{"requests"}, modulesOf(ExtractImports(src)))
}

func TestTopLevel(t *testing.T) {
	assert.Equal(t, "os", TopLevel("os.path"))
	assert.Equal(t, "requests", TopLevel("requests"))
	assert.Equal(t, "..core.x", TopLevel("..core.x"))
}
