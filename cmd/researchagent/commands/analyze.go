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
	"github.com/researchagent-labs/researchagent/report"
	"github.com/researchagent-labs/researchagent/tui"
)

func analyzeCommand() *cli.Command {
	var sessionFlag string
	var follow bool
	var model, workflowType string
	var temperature float64
	return &cli.Command{
		Name:    "analyze",
		Summary: "Run the multi-agent analysis workflow",
		Usage:   "researchagent analyze [flags] <query>",
		Description: "Runs researcher, critic, and synthesizer agents over the\nsession's indexed papers. With --follow the agent conversation\nstreams into an interactive viewer; otherwise the command blocks\nuntil the workflow completes and prints the report.",
		Examples: []cli.Example{
			{
				Description: "Watch the agents work",
				Command:     `researchagent analyze --follow "which approach scales best?"`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flags.StringVar(&sessionFlag, "session", "", "session id (default: current session)")
			flags.BoolVar(&follow, "follow", false, "stream the agent conversation live")
			flags.StringVar(&model, "model", "", "language model for the agents")
			flags.Float64Var(&temperature, "temperature", 0, "sampling temperature")
			flags.StringVar(&workflowType, "workflow", "", "workflow type (standard, deep)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("an analysis query is required")
			}
			id, err := resolveSession(sessionFlag)
			if err != nil {
				return err
			}

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}

			params := api.AnalysisParams{
				SessionID:    id,
				Query:        strings.Join(args, " "),
				Model:        model,
				Temperature:  temperature,
				WorkflowType: workflowType,
			}
			if params.Model == "" {
				params.Model = application.config.Defaults.Model
			}
			if params.Temperature == 0 {
				params.Temperature = application.config.Defaults.Temperature
			}
			if params.WorkflowType == "" {
				params.WorkflowType = application.config.Defaults.WorkflowType
			}

			if follow {
				results, err := tui.RunLiveAnalysis(ctx, application.client, params, report.DefaultTheme, application.profile())
				if err != nil {
					return err
				}
				if results == nil {
					fmt.Println("Analysis cancelled.")
					return nil
				}
				fmt.Print(application.renderer().Results(results))
				return nil
			}

			if err := application.orchestrator.SelectSession(ctx, id); err != nil {
				return err
			}
			logger.Info("analysis started", "session_id", id, "model", params.Model)
			results, err := application.orchestrator.Analyze(ctx, params)
			if err != nil {
				return err
			}
			fmt.Print(application.renderer().Results(results))
			return nil
		},
	}
}

func resultsCommand() *cli.Command {
	var sessionFlag string
	return &cli.Command{
		Name:    "results",
		Summary: "Show the stored analysis results for a session",
		Usage:   "researchagent results [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("results", pflag.ContinueOnError)
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
			results, err := application.client.AnalysisResults(ctx, id)
			if err != nil {
				return err
			}
			if results == nil {
				fmt.Println("No analysis results for this session yet.")
				return nil
			}
			fmt.Print(application.renderer().Results(results))
			return nil
		},
	}
}
