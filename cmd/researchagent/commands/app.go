// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/researchagent-labs/researchagent/account"
	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/config"
	"github.com/researchagent-labs/researchagent/report"
	"github.com/researchagent-labs/researchagent/workflow"
)

// app wires the client stack for one command invocation: config,
// backend client, account manager, and workflow orchestrator. Built
// lazily by each leaf command so that --help never touches the
// filesystem or network.
type app struct {
	config       *config.Config
	client       *api.Client
	account      *account.Manager
	orchestrator *workflow.Orchestrator
	logger       *slog.Logger
}

func newApp(logger *slog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := account.NewStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	// The account manager is the client's token source, so the client
	// is built first with a placeholder and the manager wired after.
	// api.Client reads the token per request, which makes the two-step
	// construction safe.
	var manager *account.Manager
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.Server.BaseURL,
		Logger:  logger,
		TokenSource: api.TokenSourceFunc(func() string {
			if manager == nil {
				return ""
			}
			return manager.Token()
		}),
	})
	if err != nil {
		return nil, err
	}
	manager = account.NewManager(store, client, logger)

	return &app{
		config:       cfg,
		client:       client,
		account:      manager,
		orchestrator: workflow.New(client, logger),
		logger:       logger,
	}, nil
}

// backendApp builds the app and restores the persisted login session,
// so backend-touching commands send the bearer token when one exists.
func backendApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	application, err := newApp(logger)
	if err != nil {
		return nil, err
	}
	if err := application.account.Load(ctx); err != nil {
		return nil, err
	}
	return application, nil
}

// terminalWidth returns the stdout width, or a conservative default
// when stdout is not a terminal.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 100
}

// profile resolves the configured ui.color mode into a termenv
// profile.
func (a *app) profile() termenv.Profile {
	return report.ColorProfile(a.config.UI.Color)
}

// renderer builds a report renderer for the current terminal.
func (a *app) renderer() *report.Renderer {
	return report.NewRenderer(report.DefaultTheme, terminalWidth(), a.profile())
}

// stateFilePath is where the current session id persists between
// invocations, next to the login session file's directory.
func stateFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(configDir, "researchagent", "current_session"), nil
}

// currentSessionID reads the persisted session selection, or "".
func currentSessionID() (string, error) {
	path, err := stateFilePath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading current session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// saveCurrentSessionID persists the session selection. An empty id
// clears it.
func saveCurrentSessionID(id string) error {
	path, err := stateFilePath()
	if err != nil {
		return err
	}
	if id == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clearing current session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return fmt.Errorf("writing current session: %w", err)
	}
	return nil
}

// resolveSession picks the session for a command: the --session flag
// when given, otherwise the persisted selection.
func resolveSession(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	id, err := currentSessionID()
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("no session selected; run 'researchagent session pick' or pass --session")
	}
	return id, nil
}
