// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared helpers for tests: channel
// operations with timeout safety valves so a broken test hangs for a
// bounded time instead of forever.
package testutil
