// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// maxSearchResults bounds a single arXiv search. The backend enforces
// its own limit; this keeps a typo like "100" from turning into a
// minutes-long fetch.
const (
	minSearchResults     = 2
	maxSearchResults     = 20
	defaultSearchResults = 10
)

// ClampSearchResults forces a requested result count into the
// supported range, substituting the default for zero.
func ClampSearchResults(n int) int {
	switch {
	case n == 0:
		return defaultSearchResults
	case n < minSearchResults:
		return minSearchResults
	case n > maxSearchResults:
		return maxSearchResults
	}
	return n
}

// FetchArxiv searches arXiv through the backend and returns the
// matching papers together with the id of the session they were added
// to. When sessionID is empty the backend creates a new session for
// the query; the returned SessionID names it.
//
// The endpoint has two response shapes in the wild: an object with
// session_id and papers, and a bare paper array. Both decode; the
// array shape leaves SessionID empty, so callers that adopt implicitly
// created sessions simply get nothing to adopt.
func (c *Client) FetchArxiv(ctx context.Context, query string, maxResults int, sessionID string) (*SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("api: search query is required")
	}

	request := map[string]any{
		"query":       query,
		"max_results": ClampSearchResults(maxResults),
	}
	if sessionID != "" {
		request["session_id"] = sessionID
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/papers/fetch-arxiv", request, nil)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &result.Papers); err != nil {
			return nil, fmt.Errorf("api: decoding response from POST /api/papers/fetch-arxiv: %w", err)
		}
		return &result, nil
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("api: decoding response from POST /api/papers/fetch-arxiv: %w", err)
		}
	}
	return &result, nil
}

// UploadPaper uploads a PDF from the local filesystem into a session.
// The file is sent as a multipart form (field "file") alongside the
// session id. A BLAKE3 digest of the file content is logged so uploads
// can be correlated with backend-side dedup and audit records.
func (c *Client) UploadPaper(ctx context.Context, sessionID, path string) (*Paper, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("api: reading upload file: %w", err)
	}

	digest := blake3.Sum256(content)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("api: building multipart form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("api: writing multipart form: %w", err)
	}
	if err := writer.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("api: writing multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("api: finalizing multipart form: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/papers/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("api: creating upload request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: uploading %s: %w", filepath.Base(path), err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("api: reading upload response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &APIError{StatusCode: response.StatusCode, Body: string(responseBody)}
	}

	var paper Paper
	if err := json.Unmarshal(responseBody, &paper); err != nil {
		return nil, fmt.Errorf("api: decoding upload response: %w", err)
	}

	c.logger.Info("paper uploaded",
		"session", sessionID,
		"file", filepath.Base(path),
		"bytes", len(content),
		"blake3", hex.EncodeToString(digest[:]))

	return &paper, nil
}
