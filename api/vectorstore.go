// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultQueryK is the number of chunks a vector query returns when
// the caller does not ask for a specific count.
const DefaultQueryK = 5

// VectorQuery runs a semantic search over a session's vector store
// and returns the k best-matching chunks. k defaults to DefaultQueryK
// when zero or negative.
func (c *Client) VectorQuery(ctx context.Context, sessionID, query string, k int) ([]VectorSearchResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	if query == "" {
		return nil, fmt.Errorf("api: query is required")
	}
	if k <= 0 {
		k = DefaultQueryK
	}

	request := map[string]any{
		"session_id": sessionID,
		"query":      query,
		"k":          k,
	}
	var results []VectorSearchResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/vector-store/query", request, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// VectorStats reports whether a session's vector store exists and how
// many chunks it holds.
func (c *Client) VectorStats(ctx context.Context, sessionID string) (*VectorStoreStats, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	var stats VectorStoreStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/vector-store/stats/"+url.PathEscape(sessionID), nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
