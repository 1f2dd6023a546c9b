// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListSessions returns every research session visible to the caller.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession returns a single session by id.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	var session Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession creates a new session with the given topic.
func (c *Client) CreateSession(ctx context.Context, topic string) (*Session, error) {
	if topic == "" {
		return nil, fmt.Errorf("api: topic is required")
	}
	request := map[string]string{"topic": topic}
	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/sessions", request, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session and all of its server-side state
// (papers, vector store, analysis results). Callers must treat any
// locally cached data for this id as invalid afterwards.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("api: session id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(sessionID), nil, nil, nil)
}

// SessionPapers returns the papers grouped under a session.
func (c *Client) SessionPapers(ctx context.Context, sessionID string) ([]Paper, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	var papers []Paper
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID)+"/papers", nil, nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}
