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

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/config"
)

func (a *App) runConfigShow(context.Context, Invocation) error {
	data, err := config.Marshal(a.Config)
	if err != nil {
		return err
	}
	a.Console.Muted("# " + a.ConfigPath)
	a.Console.Printf("%s", data)
	return nil
}

func (a *App) runConfigInit(context.Context, Invocation) error {
	if err := config.WriteDefault(a.ConfigPath); err != nil {
		return err
	}
	a.Console.Success("wrote " + a.ConfigPath)
	return nil
}
