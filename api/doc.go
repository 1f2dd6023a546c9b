// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the typed client for the ResearchAgent backend.
//
// The backend exposes three kinds of operations, and the package
// mirrors that split:
//
//   - One-shot JSON calls (session CRUD, paper search, vector store
//     queries, analysis start/results). These go through a single
//     request path that attaches the caller's bearer token and wraps
//     non-2xx responses in [*APIError].
//   - Streamed progress operations (PDF download, vector store build).
//     The response body interleaves "data: "-prefixed progress lines
//     with a terminal JSON result; [Client.DownloadPDFs] and
//     [Client.BuildVectorStore] surface the progress lines through a
//     callback and return the parsed terminal result.
//   - The live analysis channel ([Client.StreamAnalysis]): a
//     server-sent-events connection carrying agent conversation
//     updates until a "complete" event delivers the final
//     [WorkflowResults].
//
// The client performs no retries and no caching. Cancellation is
// context-based for one-shot and streamed calls, and explicit (the
// returned [CancelFunc]) for the live analysis channel.
package api
