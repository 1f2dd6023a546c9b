// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
)

// progressLine returns a ProgressFunc that redraws one stderr line per
// update on a terminal, and a finish func that ends the line. Off a
// terminal the updates go to the debug log instead, so piped output
// stays parseable.
func progressLine(label string, logger *slog.Logger) (api.ProgressFunc, func()) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		onProgress := func(current, total int, status string) {
			logger.Debug(label, "current", current, "total", total, "status", status)
		}
		return onProgress, func() {}
	}

	drew := false
	onProgress := func(current, total int, status string) {
		drew = true
		line := fmt.Sprintf("%s %d/%d", label, current, total)
		if status != "" {
			line += "  " + status
		}
		fmt.Fprintf(os.Stderr, "\r\033[K%s", line)
	}
	finish := func() {
		if drew {
			fmt.Fprintln(os.Stderr)
		}
	}
	return onProgress, finish
}

// selectForStage loads the session a pipeline command operates on.
func selectForStage(ctx context.Context, application *app, sessionFlag string) error {
	id, err := resolveSession(sessionFlag)
	if err != nil {
		return err
	}
	return application.orchestrator.SelectSession(ctx, id)
}

func downloadCommand() *cli.Command {
	var sessionFlag string
	return &cli.Command{
		Name:    "download",
		Summary: "Download PDFs for the session's papers",
		Usage:   "researchagent download [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("download", pflag.ContinueOnError)
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			if err := selectForStage(ctx, application, sessionFlag); err != nil {
				return err
			}

			onProgress, finish := progressLine("downloading", logger)
			result, err := application.orchestrator.Download(ctx, onProgress)
			finish()
			if err != nil {
				return err
			}
			fmt.Printf("Downloaded %d PDFs", result.Downloaded)
			if result.Failed > 0 {
				fmt.Printf(", %d failed", result.Failed)
			}
			fmt.Println()
			return nil
		},
	}
}

func buildCommand() *cli.Command {
	var sessionFlag string
	return &cli.Command{
		Name:    "build",
		Summary: "Build the session's vector index from downloaded PDFs",
		Usage:   "researchagent build [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			if err := selectForStage(ctx, application, sessionFlag); err != nil {
				return err
			}

			onProgress, finish := progressLine("indexing", logger)
			result, err := application.orchestrator.Build(ctx, onProgress)
			finish()
			if err != nil {
				return err
			}
			fmt.Printf("Built vector index: %d chunks", result.ChunksCount)
			if result.EmbeddingDim > 0 {
				fmt.Printf(" (dim %d)", result.EmbeddingDim)
			}
			fmt.Println()
			return nil
		},
	}
}
