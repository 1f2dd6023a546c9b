// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ProgressFunc receives incremental status during a streamed backend
// operation. current and total count processed items; status is a
// human-readable description and may be empty.
type ProgressFunc func(current, total int, status string)

// progressPrefix marks progress records in a streamed response body.
// Lines without it belong to the operation's terminal result.
const progressPrefix = "data: "

// progressRecord is the JSON payload of one progress line. Current
// and Total are pointers so a record that omits them can be told apart
// from one reporting zero — records missing either field are dropped.
type progressRecord struct {
	Current *int   `json:"current"`
	Total   *int   `json:"total"`
	Status  string `json:"status"`
}

// progressParser incrementally parses a streamed operation body. The
// body arrives in arbitrary chunks; the parser keeps the trailing
// partial line buffered across feeds so a progress record split
// mid-line (or mid-JSON) parses identically to one delivered whole.
// Complete lines carrying the progress prefix are decoded and
// delivered through the callback; malformed progress lines are
// dropped without failing the operation. Everything else accumulates
// as the terminal result.
type progressParser struct {
	onProgress ProgressFunc
	partial    []byte
	terminal   bytes.Buffer
}

func newProgressParser(onProgress ProgressFunc) *progressParser {
	return &progressParser{onProgress: onProgress}
}

// feed consumes one chunk of the response body.
func (p *progressParser) feed(chunk []byte) {
	p.partial = append(p.partial, chunk...)
	for {
		newline := bytes.IndexByte(p.partial, '\n')
		if newline < 0 {
			return
		}
		line := string(p.partial[:newline])
		p.partial = p.partial[newline+1:]
		p.consumeLine(line)
	}
}

// finish flushes the trailing unterminated line and returns the
// accumulated terminal result, trimmed of surrounding whitespace.
func (p *progressParser) finish() []byte {
	if len(p.partial) > 0 {
		p.consumeLine(string(p.partial))
		p.partial = nil
	}
	return bytes.TrimSpace(p.terminal.Bytes())
}

func (p *progressParser) consumeLine(line string) {
	payload, isProgress := strings.CutPrefix(line, progressPrefix)
	if !isProgress {
		p.terminal.WriteString(line)
		p.terminal.WriteByte('\n')
		return
	}

	var record progressRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		// Malformed progress lines never abort the operation.
		return
	}
	if record.Current == nil || record.Total == nil {
		return
	}
	if p.onProgress != nil {
		p.onProgress(*record.Current, *record.Total, record.Status)
	}
}

// streamOperation runs one streamed backend operation: POST the
// session id to path, relay progress records to onProgress, and
// decode the terminal JSON into result. A non-2xx status fails
// immediately with *APIError, before any progress callback fires.
func (c *Client) streamOperation(ctx context.Context, path, sessionID string, onProgress ProgressFunc, result any) error {
	if sessionID == "" {
		return fmt.Errorf("api: session id is required")
	}

	encoded, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("api: encoding request body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("api: POST %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
		return &APIError{StatusCode: response.StatusCode, Body: string(body)}
	}

	parser := newProgressParser(onProgress)
	chunk := make([]byte, 4096)
	for {
		n, readErr := response.Body.Read(chunk)
		if n > 0 {
			parser.feed(chunk[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("api: reading stream from %s: %w", path, readErr)
		}
	}

	terminal := parser.finish()
	if len(terminal) == 0 {
		return fmt.Errorf("api: stream from %s ended without a result", path)
	}
	if err := json.Unmarshal(terminal, result); err != nil {
		return fmt.Errorf("api: decoding result from %s: %w", path, err)
	}
	return nil
}

// DownloadPDFs asks the backend to download the PDFs for every paper
// in a session. Progress is relayed through onProgress (which may be
// nil); the call returns once the stream ends with the final
// downloaded/failed counts.
func (c *Client) DownloadPDFs(ctx context.Context, sessionID string, onProgress ProgressFunc) (*DownloadResult, error) {
	var result DownloadResult
	if err := c.streamOperation(ctx, "/api/papers/download-pdfs", sessionID, onProgress, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BuildVectorStore asks the backend to chunk, embed, and index the
// session's downloaded PDFs. Progress is relayed through onProgress
// (which may be nil); the call returns the final chunk count and
// embedding dimensionality.
func (c *Client) BuildVectorStore(ctx context.Context, sessionID string, onProgress ProgressFunc) (*BuildResult, error) {
	var result BuildResult
	if err := c.streamOperation(ctx, "/api/vector-store/build", sessionID, onProgress, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
