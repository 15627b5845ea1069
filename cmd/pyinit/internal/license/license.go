// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package license writes a LICENSE file and records the license in
// pyproject.toml.
package license

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// FileName is the license file written at the project root.
const FileName = "LICENSE"

// License is one supported license.
type License struct {
	// Key is the lowercase name users type, e.g. "mit".
	Key  string
	SPDX string
	text string
}

var catalog = map[string]License{
	"mit":          {Key: "mit", SPDX: "MIT", text: mitText},
	"bsd-3-clause": {Key: "bsd-3-clause", SPDX: "BSD-3-Clause", text: bsd3Text},
	"isc":          {Key: "isc", SPDX: "ISC", text: iscText},
}

// List returns the supported licenses sorted by key.
func List() []License {
	out := make([]License, 0, len(catalog))
	for _, l := range catalog {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Lookup finds a license by key or SPDX identifier, case-insensitively.
func Lookup(name string) (License, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, l := range catalog {
		if l.Key == want || strings.ToLower(l.SPDX) == want {
			return l, nil
		}
	}
	keys := make([]string, 0, len(catalog))
	for _, l := range List() {
		keys = append(keys, l.Key)
	}
	return License{}, util.Validationf("license %q not recognized (available: %s)", name, strings.Join(keys, ", "))
}

// Render returns the license text with the year and holder filled in.
func (l License) Render(year int, holder string) (string, error) {
	tmpl, err := template.New(l.Key).Parse(l.text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Year   int
		Holder string
	}{year, holder}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var licenseEntry = regexp.MustCompile(`(?m)^[ \t]*license[ \t]*=.*$`)
var versionLine = regexp.MustCompile(`(?m)^[ \t]*version[ \t]*=.*$`)

// SetField sets license = { text = "<spdx>" } in the [project] table of
// pyproject content. An existing single-line license entry is replaced;
// otherwise the entry is inserted after version, or at the top of the
// table.
func SetField(content []byte, spdx string) ([]byte, error) {
	start, end, ok := project.TableRange(content, "project")
	if !ok {
		return nil, util.Validationf("no [project] table in %s", project.MarkerFile)
	}
	entry := fmt.Sprintf(`license = { text = %q }`, spdx)
	section := content[start:end]

	var out []byte
	switch {
	case licenseEntry.Match(section):
		m := licenseEntry.FindIndex(section)
		out = append(out, content[:start+m[0]]...)
		out = append(out, entry...)
		out = append(out, content[start+m[1]:]...)
	case versionLine.Match(section):
		m := versionLine.FindIndex(section)
		out = append(out, content[:start+m[1]]...)
		out = append(out, '\n')
		out = append(out, entry...)
		out = append(out, content[start+m[1]:]...)
	default:
		out = append(out, content[:start]...)
		out = append(out, '\n')
		out = append(out, entry...)
		out = append(out, content[start:]...)
	}
	return out, nil
}

// Plan is a pending license change.
type Plan struct {
	License  License
	Text     string
	Path     string
	Existing bool

	pyprojectPath string
	pyproject     []byte
	mode          fs.FileMode
}

// NewPlan renders the license for root. The holder is the first author in
// pyproject.toml, or holder when there is none.
func NewPlan(root project.Root, name string, year int, holder string) (*Plan, error) {
	lic, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	path := root.PyprojectPath()
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, util.NotFoundf("%s", path)
		}
		return nil, err
	}
	py, err := project.ParsePyproject(content)
	if err != nil {
		return nil, err
	}
	if authors := py.AuthorNames(); len(authors) > 0 {
		holder = authors[0]
	}
	updated, err := SetField(content, lic.SPDX)
	if err != nil {
		return nil, err
	}
	text, err := lic.Render(year, holder)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		License:       lic,
		Text:          text,
		Path:          root.Join(FileName),
		pyprojectPath: path,
		pyproject:     updated,
		mode:          info.Mode().Perm(),
	}
	if _, err := os.Stat(p.Path); err == nil {
		p.Existing = true
	}
	return p, nil
}

// Apply writes LICENSE and the updated pyproject.toml.
func (p *Plan) Apply() error {
	if err := os.WriteFile(p.Path, []byte(p.Text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.Path, err)
	}
	if err := os.WriteFile(p.pyprojectPath, p.pyproject, p.mode); err != nil {
		return fmt.Errorf("write %s: %w", p.pyprojectPath, err)
	}
	return nil
}

const mitText = `MIT License

Copyright (c) {{.Year}} {{.Holder}}

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`

const bsd3Text = `BSD 3-Clause License

Copyright (c) {{.Year}}, {{.Holder}}

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
   list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
   this list of conditions and the following disclaimer in the documentation
   and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
   contributors may be used to endorse or promote products derived from
   this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
`

const iscText = `ISC License

Copyright (c) {{.Year}} {{.Holder}}

Permission to use, copy, modify, and/or distribute this software for any
purpose with or without fee is hereby granted, provided that the above
copyright notice and this permission notice appear in all copies.

THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
`
