// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package account manages the locally persisted login session: the
// access token and user record saved after a successful login, loaded
// and re-verified on startup, and cleared as a unit on logout or when
// verification fails. The token and user are never persisted
// independently — a session file either holds both or does not exist.
package account
