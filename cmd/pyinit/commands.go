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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
)

// =============================================================================
// Command Enumeration
// =============================================================================

// Command identifies one CLI operation. The set is closed: every value is
// handled by the switch in App.Dispatch.
type Command int

const (
	CmdNew Command = iota + 1
	CmdInit
	CmdRun
	CmdAdd
	CmdRemove
	CmdUpdate
	CmdLock
	CmdBuild
	CmdTest
	CmdCheck
	CmdFormat
	CmdVenvCreate
	CmdVenvRemove
	CmdGraph
	CmdScan
	CmdInfo
	CmdClean
	CmdRelease
	CmdDocker
	CmdEnvSet
	CmdEnvList
	CmdEnvUnset
	CmdLicenseList
	CmdLicenseSet
	CmdHooks
	CmdConfigShow
	CmdConfigInit
)

var commandNames = map[Command]string{
	CmdNew:         "new",
	CmdInit:        "init",
	CmdRun:         "run",
	CmdAdd:         "add",
	CmdRemove:      "remove",
	CmdUpdate:      "update",
	CmdLock:        "lock",
	CmdBuild:       "build",
	CmdTest:        "test",
	CmdCheck:       "check",
	CmdFormat:      "format",
	CmdVenvCreate:  "venv create",
	CmdVenvRemove:  "venv remove",
	CmdGraph:       "graph",
	CmdScan:        "scan",
	CmdInfo:        "info",
	CmdClean:       "clean",
	CmdRelease:     "release",
	CmdDocker:      "docker",
	CmdEnvSet:      "env set",
	CmdEnvList:     "env list",
	CmdEnvUnset:    "env unset",
	CmdLicenseList: "license list",
	CmdLicenseSet:  "license set",
	CmdHooks:       "hooks",
	CmdConfigShow:  "config show",
	CmdConfigInit:  "config init",
}

// String returns the command as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// =============================================================================
// Invocation
// =============================================================================

// Invocation is the parsed input of one command: positional arguments and
// the flags of the command that declares them.
type Invocation struct {
	Args []string

	New     NewFlags
	Init    InitFlags
	Update  UpdateFlags
	Lock    LockFlags
	Graph   GraphFlags
	Release ReleaseFlags
}

type NewFlags struct {
	Template string
	NoVenv   bool
	NoGit    bool
}

type InitFlags struct {
	NoVenv bool
	NoGit  bool
}

type UpdateFlags struct {
	Upgrade bool
}

type LockFlags struct {
	Output string
}

type GraphFlags struct {
	Format   string
	Output   string
	TopLevel bool
	Exclude  []string
	Watch    bool
}

type ReleaseFlags struct {
	DryRun bool
}

// UsageError is a malformed command line. It maps to ExitBadArgs.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// =============================================================================
// Dispatch
// =============================================================================

// Dispatch runs the handler for cmd.
//
// # Description
//
// Each command runs inside one span. A handler failure is wrapped once in
// util.OperationError naming the command; an unknown Command is a
// UsageError.
func (a *App) Dispatch(ctx context.Context, cmd Command, inv Invocation) (err error) {
	ctx, span := a.Tracer.Start(ctx, "pyinit "+cmd.String(),
		trace.WithAttributes(
			attribute.String("pyinit.command", cmd.String()),
			attribute.Int("pyinit.args", len(inv.Args)),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, util.Kind(err))
		}
		span.End()
	}()
	a.Logger.Debug("dispatch", "command", cmd.String(), "args", inv.Args, "dir", a.workDir)

	switch cmd {
	case CmdNew:
		err = a.runNew(ctx, inv)
	case CmdInit:
		err = a.runInit(ctx, inv)
	case CmdRun:
		err = a.runRun(ctx, inv)
	case CmdAdd:
		err = a.runAdd(ctx, inv)
	case CmdRemove:
		err = a.runRemove(ctx, inv)
	case CmdUpdate:
		err = a.runUpdate(ctx, inv)
	case CmdLock:
		err = a.runLock(ctx, inv)
	case CmdBuild:
		err = a.runBuild(ctx, inv)
	case CmdTest:
		err = a.runTest(ctx, inv)
	case CmdCheck:
		err = a.runCheck(ctx, inv)
	case CmdFormat:
		err = a.runFormat(ctx, inv)
	case CmdVenvCreate:
		err = a.runVenvCreate(ctx, inv)
	case CmdVenvRemove:
		err = a.runVenvRemove(ctx, inv)
	case CmdGraph:
		err = a.runGraph(ctx, inv)
	case CmdScan:
		err = a.runScan(ctx, inv)
	case CmdInfo:
		err = a.runInfo(ctx, inv)
	case CmdClean:
		err = a.runClean(ctx, inv)
	case CmdRelease:
		err = a.runRelease(ctx, inv)
	case CmdDocker:
		err = a.runDocker(ctx, inv)
	case CmdEnvSet:
		err = a.runEnvSet(ctx, inv)
	case CmdEnvList:
		err = a.runEnvList(ctx, inv)
	case CmdEnvUnset:
		err = a.runEnvUnset(ctx, inv)
	case CmdLicenseList:
		err = a.runLicenseList(ctx, inv)
	case CmdLicenseSet:
		err = a.runLicenseSet(ctx, inv)
	case CmdHooks:
		err = a.runHooks(ctx, inv)
	case CmdConfigShow:
		err = a.runConfigShow(ctx, inv)
	case CmdConfigInit:
		err = a.runConfigInit(ctx, inv)
	default:
		return &UsageError{Msg: fmt.Sprintf("unknown command %s", cmd)}
	}
	return util.Fail(cmd.String(), "", err)
}
