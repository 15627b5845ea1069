// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dotenv manages the project's .env file.
//
// Reading and writing go through godotenv, so quoting and escaping match
// what python-dotenv and most shells accept. Entries are written sorted by
// key. Every change also makes sure .env is listed in .gitignore.
package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/project"
)

// FileName is the env file name under the project root.
const FileName = ".env"

// File is an in-memory .env file.
type File struct {
	path string
	vars map[string]string
}

// Load reads <root>/.env. A missing file yields an empty File.
func Load(root project.Root) (*File, error) {
	path := root.Join(FileName)
	f := &File{path: path, vars: map[string]string{}}

	vars, err := godotenv.Read(path)
	switch {
	case err == nil:
		f.vars = vars
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Set adds or replaces vars.
func (f *File) Set(vars ...EnvVar) error {
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	for _, v := range vars {
		f.vars[v.Key] = v.Value
	}
	return nil
}

// Unset removes keys and returns the ones that were not present.
func (f *File) Unset(keys ...string) (missing []string) {
	for _, k := range keys {
		if _, ok := f.vars[k]; !ok {
			missing = append(missing, k)
			continue
		}
		delete(f.vars, k)
	}
	return missing
}

// Get returns the value of key.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.vars[key]
	return v, ok
}

// List returns every entry sorted by key.
func (f *File) List() []EnvVar {
	keys := make([]string, 0, len(f.vars))
	for k := range f.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]EnvVar, len(keys))
	for i, k := range keys {
		out[i] = NewEnvVar(k, f.vars[k])
	}
	return out
}

// Save writes the file and makes sure it is git-ignored.
//
// # Outputs
//
// ignoredNow is true when .env was added to .gitignore by this call.
func (f *File) Save(root project.Root) (ignoredNow bool, err error) {
	if err := godotenv.Write(f.vars, f.path); err != nil {
		return false, fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := os.Chmod(f.path, 0o600); err != nil {
		return false, fmt.Errorf("chmod %s: %w", f.path, err)
	}
	added, err := project.EnsureGitignore(root.Path(), "# Environment variables", FileName)
	if err != nil {
		return false, err
	}
	return len(added) > 0, nil
}
