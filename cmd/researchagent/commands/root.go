// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the researchagent command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
	"github.com/researchagent-labs/researchagent/version"
)

// Root returns the full researchagent command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:        "researchagent",
		Summary:     "Multi-agent research paper analysis",
		Description: "researchagent drives a research backend: search arXiv for papers,\ndownload PDFs, build a vector index, and run a multi-agent analysis\nworkflow over the result.",
		Examples: []cli.Example{
			{
				Description: "Search for papers on a topic",
				Command:     `researchagent search "solid state battery electrolytes"`,
			},
			{
				Description: "Run the full pipeline on the current session",
				Command:     "researchagent download && researchagent build && researchagent analyze --follow \"compare the proposed electrolytes\"",
			},
		},
		Subcommands: []*cli.Command{
			loginCommand(),
			signupCommand(),
			logoutCommand(),
			whoamiCommand(),
			sessionCommand(),
			searchCommand(),
			paperCommand(),
			downloadCommand(),
			buildCommand(),
			vectorCommand(),
			analyzeCommand(),
			resultsCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print the client version",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
