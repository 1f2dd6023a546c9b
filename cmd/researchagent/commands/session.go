// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
	"github.com/researchagent-labs/researchagent/report"
	"github.com/researchagent-labs/researchagent/tui"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Summary: "Manage research sessions",
		Subcommands: []*cli.Command{
			sessionListCommand(),
			sessionShowCommand(),
			sessionCreateCommand(),
			sessionDeleteCommand(),
			sessionPapersCommand(),
			sessionPickCommand(),
		},
	}
}

func sessionListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List all sessions",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			sessions, err := application.client.ListSessions(ctx)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions.")
				return nil
			}

			current, err := currentSessionID()
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "  ID\tTOPIC\tPAPERS\tCHUNKS\tCREATED")
			for _, session := range sessions {
				marker := " "
				if session.SessionID == current {
					marker = "*"
				}
				fmt.Fprintf(writer, "%s %s\t%s\t%d\t%d\t%s\n",
					marker, session.SessionID, session.Topic,
					session.PapersCount, session.ChunksCount, session.CreatedAt)
			}
			return writer.Flush()
		},
	}
}

func sessionShowCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Show one session in detail",
		Usage:   "researchagent session show [<session-id>]",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			var requested string
			if len(args) > 0 {
				requested = args[0]
			}
			id, err := resolveSession(requested)
			if err != nil {
				return err
			}

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			if err := application.orchestrator.SelectSession(ctx, id); err != nil {
				return err
			}
			snapshot := application.orchestrator.Snapshot()

			fmt.Printf("Session:  %s\n", snapshot.Session.SessionID)
			fmt.Printf("Topic:    %s\n", snapshot.Session.Topic)
			fmt.Printf("Papers:   %d\n", len(snapshot.Papers))
			downloaded := 0
			for i := range snapshot.Papers {
				if snapshot.Papers[i].HasPDF() {
					downloaded++
				}
			}
			fmt.Printf("PDFs:     %d\n", downloaded)
			if snapshot.VectorStats != nil && snapshot.VectorStats.Exists {
				fmt.Printf("Index:    %d chunks\n", snapshot.VectorStats.ChunksCount)
			} else {
				fmt.Println("Index:    not built")
			}
			if snapshot.Session.CreatedAt != "" {
				fmt.Printf("Created:  %s\n", snapshot.Session.CreatedAt)
			}
			return nil
		},
	}
}

func sessionCreateCommand() *cli.Command {
	return &cli.Command{
		Name:    "create",
		Summary: "Create a session and select it",
		Usage:   "researchagent session create <topic>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("a topic is required")
			}
			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			session, err := application.orchestrator.NewSession(ctx, args[0])
			if err != nil {
				return err
			}
			if err := saveCurrentSessionID(session.SessionID); err != nil {
				return err
			}
			fmt.Printf("Created session %s\n", session.SessionID)
			return nil
		},
	}
}

func sessionDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a session and all its data",
		Usage:   "researchagent session delete <session-id>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("a session id is required")
			}
			id := args[0]

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			if err := application.orchestrator.DeleteSession(ctx, id); err != nil {
				return err
			}

			current, err := currentSessionID()
			if err != nil {
				return err
			}
			if current == id {
				if err := saveCurrentSessionID(""); err != nil {
					return err
				}
			}
			fmt.Printf("Deleted session %s\n", id)
			return nil
		},
	}
}

func sessionPapersCommand() *cli.Command {
	return &cli.Command{
		Name:    "papers",
		Summary: "List the papers in a session",
		Usage:   "researchagent session papers [<session-id>]",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			var requested string
			if len(args) > 0 {
				requested = args[0]
			}
			id, err := resolveSession(requested)
			if err != nil {
				return err
			}

			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			papers, err := application.client.SessionPapers(ctx, id)
			if err != nil {
				return err
			}
			if len(papers) == 0 {
				fmt.Println("No papers in this session.")
				return nil
			}
			fmt.Print(application.renderer().Papers(papers))
			return nil
		},
	}
}

func sessionPickCommand() *cli.Command {
	return &cli.Command{
		Name:    "pick",
		Summary: "Pick the current session interactively",
		Description: "Opens a fuzzy finder over all sessions. The chosen session\nbecomes the default for search, download, build, and analyze.",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := backendApp(ctx, logger)
			if err != nil {
				return err
			}
			sessions, err := application.client.ListSessions(ctx)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				return fmt.Errorf("no sessions to pick from")
			}

			choice, err := tui.PickSession(sessions, report.DefaultTheme, application.profile())
			if err != nil {
				return err
			}
			if choice == nil {
				return nil
			}
			if err := saveCurrentSessionID(choice.SessionID); err != nil {
				return err
			}
			fmt.Printf("Selected session %s (%s)\n", choice.SessionID, choice.Topic)
			return nil
		},
	}
}
