// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
)

func vectorCommand() *cli.Command {
	return &cli.Command{
		Name:    "vector",
		Summary: "Query and inspect a session's vector index",
		Subcommands: []*cli.Command{
			vectorQueryCommand(),
			vectorStatsCommand(),
		},
	}
}

func vectorQueryCommand() *cli.Command {
	var sessionFlag string
	var topK int
	return &cli.Command{
		Name:    "query",
		Summary: "Semantic search over indexed paper chunks",
		Usage:   "researchagent vector query [flags] <text>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("query", pflag.ContinueOnError)
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			flags.IntVarP(&topK, "top", "k", 5, "number of chunks to return")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("a query is required")
			}
			id, err := resolveSession(sessionFlag)
			if err != nil {
				return err
			}

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			results, err := application.client.VectorQuery(ctx, id, strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No matching chunks.")
				return nil
			}
			fmt.Print(application.renderer().VectorResults(results))
			return nil
		},
	}
}

func vectorStatsCommand() *cli.Command {
	var sessionFlag string
	return &cli.Command{
		Name:    "stats",
		Summary: "Show vector index status for a session",
		Usage:   "researchagent vector stats [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("stats", pflag.ContinueOnError)
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, err := resolveSession(sessionFlag)
			if err != nil {
				return err
			}

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			stats, err := application.client.VectorStats(ctx, id)
			if err != nil {
				return err
			}
			if !stats.Exists {
				fmt.Println("No vector index built for this session.")
				return nil
			}
			fmt.Printf("Vector index: %d chunks\n", stats.ChunksCount)
			return nil
		},
	}
}
