// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package project

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

var (
	separatorPattern  = regexp.MustCompile(`[\s-]+`)
	disallowedPattern = regexp.MustCompile(`[^a-z0-9_]`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// pythonKeywords cannot be used as package names.
var pythonKeywords = map[string]struct{}{
	"false": {}, "none": {}, "true": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// SanitizeName lowercases name, turns whitespace and hyphens into
// underscores and drops anything outside [a-z0-9_].
//
//	SanitizeName("My Cool-App!") == "my_cool_app"
func SanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = separatorPattern.ReplaceAllString(name, "_")
	return disallowedPattern.ReplaceAllString(name, "")
}

// packageNameRequest is validated with the "pyident" tag.
type packageNameRequest struct {
	Name string `validate:"required,max=100,pyident"`
}

var (
	nameValidator     *validator.Validate
	nameValidatorOnce sync.Once
)

func getNameValidator() *validator.Validate {
	nameValidatorOnce.Do(func() {
		nameValidator = validator.New()
		_ = nameValidator.RegisterValidation("pyident", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if !identifierPattern.MatchString(s) {
				return false
			}
			_, reserved := pythonKeywords[strings.ToLower(s)]
			return !reserved
		})
	})
	return nameValidator
}

// ValidatePackageName checks that name is usable as an importable package.
// Failures match util.ErrValidation.
func ValidatePackageName(name string) error {
	err := getNameValidator().Struct(packageNameRequest{Name: name})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Tag() {
		case "required":
			return util.Validationf("project name is empty after sanitizing")
		case "max":
			return util.Validationf("project name %q is longer than 100 characters", name)
		case "pyident":
			return util.Validationf("%q is not a valid Python package name", name)
		}
	}
	return util.Validationf("project name %q: %v", name, err)
}
