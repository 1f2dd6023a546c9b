// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// StartAnalysis runs a multi-agent workflow to completion and returns
// its results. This is the blocking variant of the live channel in
// [Client.StreamAnalysis]; the call does not return until the backend
// has finished the whole run.
func (c *Client) StartAnalysis(ctx context.Context, params AnalysisParams) (*WorkflowResults, error) {
	if params.SessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	if params.Query == "" {
		return nil, fmt.Errorf("api: query is required")
	}
	params = params.withDefaults()

	request := map[string]any{
		"session_id":    params.SessionID,
		"query":         params.Query,
		"model":         params.Model,
		"temperature":   params.Temperature,
		"workflow_type": params.WorkflowType,
	}
	var results WorkflowResults
	if err := c.doJSON(ctx, http.MethodPost, "/api/analysis/start", request, nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// AnalysisResults fetches the stored results of a session's most
// recent completed workflow. A session with no results yields
// (nil, nil) — absence is not an error.
func (c *Client) AnalysisResults(ctx context.Context, sessionID string) (*WorkflowResults, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	var results WorkflowResults
	err := c.doJSON(ctx, http.MethodGet, "/api/analysis/results/"+url.PathEscape(sessionID), nil, nil, &results)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &results, nil
}
