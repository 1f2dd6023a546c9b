// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestDispatch(t *testing.T) {
	var ran []string
	leaf := func(name string) *Command {
		return &Command{
			Name:    name,
			Summary: name,
			Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
				ran = append(ran, name)
				return nil
			},
		}
	}

	root := &Command{
		Name: "researchagent",
		Subcommands: []*Command{
			{
				Name:        "session",
				Summary:     "Manage sessions",
				Subcommands: []*Command{leaf("list"), leaf("create")},
			},
			leaf("search"),
		},
	}

	if err := root.Execute(context.Background(), []string{"session", "list"}, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if err := root.Execute(context.Background(), []string{"search"}, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(ran) != 2 || ran[0] != "list" || ran[1] != "search" {
		t.Errorf("ran = %v, want [list search]", ran)
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "researchagent",
		Subcommands: []*Command{
			{Name: "analyze", Summary: "", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"anlayze"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "analyze"`) {
		t.Errorf("error %q carries no suggestion", err)
	}
}

func TestFlagParsing(t *testing.T) {
	var gotCount int
	var gotArgs []string
	command := &Command{
		Name: "search",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flags.IntVar(&gotCount, "max-results", 10, "paper count")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			gotArgs = args
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"--max-results", "5", "battery", "papers"}, testLogger())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if gotCount != 5 {
		t.Errorf("max-results = %d, want 5", gotCount)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "battery" {
		t.Errorf("args = %v, want [battery papers]", gotArgs)
	}
}

func TestUnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "search",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flags.Int("max-results", 10, "paper count")
			return flags
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--max-result", "5"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--max-results") {
		t.Errorf("error %q carries no flag suggestion", err)
	}
}

func TestHelpOutput(t *testing.T) {
	root := &Command{
		Name:        "researchagent",
		Description: "Multi-agent research paper analysis.",
		Subcommands: []*Command{
			{Name: "search", Summary: "Search arXiv for papers"},
			{Name: "analyze", Summary: "Run the analysis workflow"},
		},
		Examples: []Example{
			{Description: "Search for papers", Command: "researchagent search \"solid state batteries\""},
		},
	}

	var out strings.Builder
	root.PrintHelp(&out)
	help := out.String()

	for _, want := range []string{
		"Multi-agent research paper analysis.",
		"search",
		"Search arXiv for papers",
		"researchagent search \"solid state batteries\"",
		"researchagent <command> --help",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"analyze", "anlayze", 2},
		{"search", "", 6},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
