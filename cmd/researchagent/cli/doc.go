// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command-tree framework for the researchagent
// binary: nested commands dispatched by name, pflag flag sets per
// command, generated help output, and typo suggestions for unknown
// commands and flags.
package cli
