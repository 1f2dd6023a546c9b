// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
)

func searchCommand() *cli.Command {
	var maxResults int
	var sessionFlag string
	return &cli.Command{
		Name:    "search",
		Summary: "Search arXiv and store the papers in a session",
		Usage:   "researchagent search [flags] <query>",
		Description: "Fetches papers from arXiv into the current session. With no\nsession selected, the backend creates one for the query and it\nbecomes the current session.",
		Examples: []cli.Example{
			{
				Description: "Fetch five papers into a fresh session",
				Command:     `researchagent search --max-results 5 "protein folding transformers"`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flags.IntVar(&maxResults, "max-results", 0, "paper count (default from config)")
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("a search query is required")
			}
			query := strings.Join(args, " ")

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			if maxResults == 0 {
				maxResults = application.config.Defaults.MaxResults
			}

			// The session is optional here: searching with none selected
			// lets the backend create one, which we then adopt.
			id := sessionFlag
			if id == "" {
				if id, err = currentSessionID(); err != nil {
					return err
				}
			}
			if id != "" {
				if err := application.orchestrator.SelectSession(ctx, id); err != nil {
					if !api.IsNotFound(err) {
						return err
					}
					logger.Warn("current session no longer exists, searching into a new one", "session_id", id)
				}
			}

			papers, err := application.orchestrator.Search(ctx, query, maxResults)
			if err != nil {
				return err
			}
			if err := saveCurrentSessionID(application.orchestrator.SessionID()); err != nil {
				return err
			}

			fmt.Printf("Found %d papers in session %s\n\n", len(papers), application.orchestrator.SessionID())
			fmt.Print(application.renderer().Papers(papers))
			return nil
		},
	}
}
