// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow tracks the client-side view of a research session
// as it moves through the pipeline: search papers, download PDFs,
// build the vector store, run the multi-agent analysis. The
// Orchestrator owns that view behind a mutex, enforces stage guards
// (no download without papers, no build without PDFs), and refuses to
// start a stage while another is in flight. The backend remains the
// source of truth; the orchestrator only caches what it has been told.
package workflow
