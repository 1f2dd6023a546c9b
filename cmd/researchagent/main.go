// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Command researchagent is the terminal client for the research
// analysis backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
	"github.com/researchagent-labs/researchagent/cmd/researchagent/commands"
	"github.com/researchagent-labs/researchagent/config"
)

func main() {
	args, verbose, configPath := splitGlobalFlags(os.Args[1:])
	if configPath != "" {
		os.Setenv(config.EnvVar, configPath)
	}
	logger := cli.NewCommandLogger(verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().Execute(ctx, args, logger); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// splitGlobalFlags strips --verbose and --config before dispatch so
// they work in any position, ahead of or after the subcommand.
func splitGlobalFlags(args []string) (filtered []string, verbose bool, configPath string) {
	filtered = args[:0:0]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--verbose" || arg == "-v":
			verbose = true
		case arg == "--config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		default:
			filtered = append(filtered, arg)
		}
	}
	return filtered, verbose, configPath
}
