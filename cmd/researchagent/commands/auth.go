// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/researchagent-labs/researchagent/cmd/researchagent/cli"
)

// readPassword prompts for a password without echo when stdin is a
// terminal, and reads a plain line otherwise so piped input works.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loginCommand() *cli.Command {
	var email string
	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate and store a session token",
		Usage:   "researchagent login --email <address>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flags.StringVar(&email, "email", "", "account email address")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			application, err := newApp(logger)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			user, err := application.account.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", user.Email)
			return nil
		},
	}
}

func signupCommand() *cli.Command {
	var email, name string
	return &cli.Command{
		Name:    "signup",
		Summary: "Create an account and log in",
		Usage:   "researchagent signup --email <address> [--name <name>]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("signup", pflag.ContinueOnError)
			flags.StringVar(&email, "email", "", "account email address")
			flags.StringVar(&name, "name", "", "display name")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			application, err := newApp(logger)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			user, err := application.account.Signup(ctx, email, password, name)
			if err != nil {
				return err
			}
			fmt.Printf("Account created, logged in as %s\n", user.Email)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Summary: "Discard the stored session token",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := newApp(logger)
			if err != nil {
				return err
			}
			if err := application.account.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the logged-in account",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := newApp(logger)
			if err != nil {
				return err
			}
			if err := application.account.Load(ctx); err != nil {
				return err
			}
			user := application.account.User()
			if user == nil {
				fmt.Println("Not logged in")
				return nil
			}
			if user.Name != "" {
				fmt.Printf("%s <%s>\n", user.Name, user.Email)
			} else {
				fmt.Println(user.Email)
			}
			return nil
		},
	}
}
