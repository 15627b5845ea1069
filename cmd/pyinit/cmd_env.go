// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/dotenv"
)

func (a *App) runEnvSet(_ context.Context, inv Invocation) error {
	vars := make([]dotenv.EnvVar, 0, len(inv.Args))
	for _, arg := range inv.Args {
		v, err := dotenv.ParseAssignment(arg)
		if err != nil {
			return err
		}
		vars = append(vars, v)
	}

	root, err := a.Root()
	if err != nil {
		return err
	}
	file, err := dotenv.Load(root)
	if err != nil {
		return err
	}
	if err := file.Set(vars...); err != nil {
		return err
	}
	ignoredNow, err := file.Save(root)
	if err != nil {
		return err
	}

	for _, v := range vars {
		a.Console.Success("set " + v.Redacted())
	}
	if ignoredNow {
		a.Console.Info("added " + dotenv.FileName + " to .gitignore")
	}
	return nil
}

func (a *App) runEnvList(context.Context, Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	file, err := dotenv.Load(root)
	if err != nil {
		return err
	}
	vars := file.List()
	if len(vars) == 0 {
		a.Console.Info("no variables in " + dotenv.FileName)
		return nil
	}
	for _, v := range vars {
		a.Console.Println(v.Redacted())
	}
	return nil
}

func (a *App) runEnvUnset(_ context.Context, inv Invocation) error {
	root, err := a.Root()
	if err != nil {
		return err
	}
	file, err := dotenv.Load(root)
	if err != nil {
		return err
	}
	missing := file.Unset(inv.Args...)
	for _, key := range missing {
		a.Console.Warning(fmt.Sprintf("%s is not set", key))
	}
	if len(missing) == len(inv.Args) {
		return nil
	}
	if _, err := file.Save(root); err != nil {
		return err
	}
	a.Console.Success(fmt.Sprintf("removed %d variables", len(inv.Args)-len(missing)))
	return nil
}
