// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
)

func paperCommand() *cli.Command {
	return &cli.Command{
		Name:    "paper",
		Summary: "Work with individual papers",
		Subcommands: []*cli.Command{
			paperUploadCommand(),
		},
	}
}

func paperUploadCommand() *cli.Command {
	var sessionFlag string
	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a local PDF into a session",
		Usage:   "researchagent paper upload [flags] <file.pdf>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("a PDF path is required")
			}
			id, err := resolveSession(sessionFlag)
			if err != nil {
				return err
			}

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			paper, err := application.client.UploadPaper(ctx, id, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded %q to session %s\n", paper.Title, id)
			return nil
		},
	}
}
