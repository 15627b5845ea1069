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

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/depgraph"
)

// =============================================================================
// graph
// =============================================================================

// runGraph is the locate, scan and render pipeline.
func (a *App) runGraph(ctx context.Context, inv Invocation) error {
	flags := inv.Graph
	format, err := depgraph.ParseFormat(flags.Format)
	if err != nil {
		return err
	}

	root, err := a.Root()
	if err != nil {
		return err
	}

	opts := a.Config.ScanOptions()
	opts.Exclude = append(opts.Exclude, flags.Exclude...)
	opts.TopLevel = opts.TopLevel || flags.TopLevel
	opts.Logger = a.Logger
	scanner, err := depgraph.NewScanner(opts)
	if err != nil {
		return err
	}
	renderer := depgraph.NewRenderer(a.Runner, a.Logger)
	renderOpts := depgraph.RenderOptions{Format: format, Output: a.resolvePath(flags.Output)}

	once := func(ctx context.Context) error {
		res, err := scanner.Scan(ctx, root.Path())
		if err != nil {
			return err
		}
		for _, s := range res.Skipped {
			a.Console.Warning(fmt.Sprintf("skipped %s: %s", s.Path, s.Reason))
		}
		a.Logger.Debug("scan finished",
			"files", res.FilesScanned, "references", res.References,
			"modules", res.Graph.Len(), "skipped", len(res.Skipped))

		out, err := renderer.Render(ctx, a.Console.Out(), res.Graph, renderOpts)
		if err != nil {
			return err
		}
		if out.Warning != "" {
			a.Console.Warning(out.Warning)
		}
		if out.Output != "" {
			a.Console.Success(fmt.Sprintf("wrote %s graph of %d modules to %s", out.Format, res.Graph.Len(), flags.Output))
		}
		return nil
	}

	if err := once(ctx); err != nil {
		return err
	}
	if !flags.Watch {
		return nil
	}

	a.Console.Info(fmt.Sprintf("watching %s for changes (Ctrl+C to stop)", root.Path()))
	return scanner.Watch(ctx, root.Path(), depgraph.DefaultDebounce, func(ctx context.Context) error {
		a.Console.Step("Rescanning", root.Name())
		return once(ctx)
	})
}
