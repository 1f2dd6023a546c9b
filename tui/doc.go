// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the interactive terminal views: a fuzzy session
// picker and a live analysis viewer that renders agent conversation
// events as they stream from the backend. Both are bubbletea models;
// the command layer runs them full-screen and reads the outcome off
// the final model.
package tui
