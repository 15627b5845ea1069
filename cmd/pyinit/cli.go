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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/config"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/logging"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/process"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/telemetry"
	"github.com/AleutianAI/pyinit/cmd/pyinit/internal/util"
	"github.com/AleutianAI/pyinit/pkg/ux"
)

// =============================================================================
// Global Flags
// =============================================================================

type globalFlags struct {
	cwd         string
	yes         bool
	verbose     bool
	personality string
	trace       bool
}

// cli holds the state of one execution: the environment, the parsed
// global flags and, once PersistentPreRunE has run, the App.
type cli struct {
	env   Env
	flags globalFlags
	app   *App
	tel   *telemetry.Telemetry

	// passthrough holds the arguments after run, test or check, which are
	// handed to the wrapped tool untouched.
	passthrough []string
}

// passthroughVerbs forward everything after the verb to the wrapped tool.
var passthroughVerbs = map[string]bool{"run": true, "test": true, "check": true}

// valueFlags are the global flags that take a separate value argument.
var valueFlags = map[string]bool{"-C": true, "--cwd": true, "--personality": true}

// splitPassthrough separates "pyinit [global flags] run ARGS..." into the
// part cobra parses and ARGS. A leading "--" in ARGS is dropped. Command
// lines without a passthrough verb are returned unchanged.
func splitPassthrough(args []string) (parsed, rest []string) {
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") && args[i] != "--" {
		if valueFlags[args[i]] {
			i++
		}
		i++
	}
	if i >= len(args) || !passthroughVerbs[args[i]] {
		return args, nil
	}
	rest = args[i+1:]
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}
	return args[:i+1], rest
}

// =============================================================================
// Execution
// =============================================================================

// execute runs one command line and returns the process exit code.
//
// # Outputs
//
//   - util.ExitSuccess when the command succeeded
//   - util.ExitBadArgs for unknown commands, bad flags and wrong argument counts
//   - util.ExitFailure when a handler failed
func execute(ctx context.Context, args []string, env Env) int {
	if env.Getenv == nil {
		env.Getenv = func(string) string { return "" }
	}
	if env.Now == nil {
		env.Now = time.Now
	}

	c := &cli{env: env}
	parsed, rest := splitPassthrough(args)
	c.passthrough = rest

	root := c.newRootCmd()
	root.SetArgs(parsed)
	root.SetIn(env.Stdin)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	err := root.ExecuteContext(ctx)
	if c.tel != nil {
		if shutdownErr := c.tel.Shutdown(context.Background()); shutdownErr != nil && c.app != nil {
			c.app.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}
	if err == nil {
		return util.ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "Error: %v\n", err)
	var opErr *util.OperationError
	if errors.As(err, &opErr) {
		return util.ExitFailure
	}
	fmt.Fprintln(env.Stderr, strings.TrimRight(usageFor(root, parsed), "\n"))
	return util.ExitBadArgs
}

// usageFor returns the usage of the deepest command named in args.
func usageFor(root *cobra.Command, args []string) string {
	if cmd, _, err := root.Find(args); err == nil && cmd != nil {
		return cmd.UsageString()
	}
	return root.UsageString()
}

// setup builds the App from the parsed global flags.
func (c *cli) setup(cmd *cobra.Command) error {
	workDir, err := workingDir(c.flags.cwd)
	if err != nil {
		return util.Fail("resolve working directory", c.flags.cwd, err)
	}

	cfgPath, err := config.DefaultPath(c.env.Getenv)
	if err != nil {
		return util.Fail("load config", "", err)
	}
	cfg, err := config.Load(cfgPath, c.env.Getenv)
	if err != nil {
		return util.Fail("load config", cfgPath, err)
	}

	personality := c.flags.personality
	if personality == "" && c.env.Getenv(ux.PersonalityEnvVar) == "" {
		personality = cfg.Personality
	}
	level := ux.ResolvePersonality(personality, c.env.Getenv(ux.PersonalityEnvVar), ux.IsTerminal(c.env.Stdout))
	console := ux.NewConsole(c.env.Stdout, c.env.Stderr, level)

	logCfg := logging.DefaultConfig()
	logCfg.Output = c.env.Stderr
	logger := logging.New(logging.ForFlags(logCfg, c.flags.verbose, c.env.Getenv(logging.EnvFormat)))

	tel, err := telemetry.Setup(cmd.Context(), telemetry.Config{
		Enabled:        c.flags.trace,
		Output:         c.env.Stderr,
		ServiceName:    "pyinit",
		ServiceVersion: version,
	})
	if err != nil {
		return util.Fail("set up tracing", "", err)
	}
	c.tel = tel

	runner := c.env.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}
	prompter := c.env.Prompter
	if prompter == nil {
		prompter = ux.NewPrompter(c.env.Stdin, c.env.Stdout, c.flags.yes)
	} else if c.flags.yes {
		prompter = &ux.NonInteractivePrompter{Assume: true}
	}

	c.app = &App{
		Console:    console,
		Prompter:   prompter,
		Runner:     process.NewTracedRunner(runner, tel.Tracer, tel.Meter, logger),
		Config:     cfg,
		Logger:     logger,
		Tracer:     tel.Tracer,
		Stdin:      c.env.Stdin,
		Getenv:     c.env.Getenv,
		ConfigPath: cfgPath,
		workDir:    workDir,
		now:        c.env.Now,
	}
	logger.Debug("configuration loaded", "path", cfgPath, "work_dir", workDir, "personality", string(level))
	return nil
}

// dispatch returns a cobra RunE that hands the command to App.Dispatch.
func (c *cli) dispatch(command Command, build func(args []string) Invocation) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		inv := Invocation{Args: args}
		if build != nil {
			inv = build(args)
		}
		return c.app.Dispatch(cmd.Context(), command, inv)
	}
}

// passthroughArgs returns a cobra RunE for run, test and check.
func (c *cli) passthroughArgs(command Command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return c.app.Dispatch(cmd.Context(), command, Invocation{Args: c.passthrough})
	}
}
