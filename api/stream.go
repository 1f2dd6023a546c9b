// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// StreamEvent is one event from the live analysis channel. Type comes
// from the event's "type" field; Data is the complete event JSON so
// callers can decode type-specific payloads.
type StreamEvent struct {
	Type string
	Data json.RawMessage
}

// StreamCallbacks receives live analysis channel events. All three
// callbacks are invoked from a single background goroutine, never
// concurrently with each other, and never again after the channel
// closes. Any of them may be nil.
type StreamCallbacks struct {
	// OnMessage receives every non-terminal event (agent turns,
	// stage transitions, progress notes).
	OnMessage func(event StreamEvent)

	// OnComplete receives the final workflow results exactly once,
	// when the terminal "complete" event arrives. The channel closes
	// immediately afterwards.
	OnComplete func(results *WorkflowResults)

	// OnError is called at most once, when the connection fails
	// before a terminal event. The channel closes immediately
	// afterwards. Cancellation does not count as an error.
	OnError func(err error)
}

// AnalysisStream is a handle to an open live analysis channel.
// Cancel is the only way to stop a run before its terminal event;
// there is no pause or resume.
type AnalysisStream struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// Cancel closes the channel. It is idempotent and safe to call after
// the stream has already completed or failed. When Cancel returns, no
// further callback will be invoked. Must not be called from inside a
// stream callback (it waits for the callback goroutine to exit).
func (s *AnalysisStream) Cancel() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	<-s.done
}

// Done returns a channel closed when the stream has ended, whether by
// completion, error, or cancellation.
func (s *AnalysisStream) Done() <-chan struct{} {
	return s.done
}

// dispatch runs callback unless the stream was cancelled. The mutex
// makes cancellation a clean barrier: once Cancel has set closed, no
// callback can start, and Cancel's wait on done ensures none is still
// running when it returns.
func (s *AnalysisStream) dispatch(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || callback == nil {
		return
	}
	callback()
}

// completePayload is the body of the terminal event.
type completePayload struct {
	Results WorkflowResults `json:"results"`
}

// streamEventType extracts just the type discriminator.
type streamEventType struct {
	Type string `json:"type"`
}

// StreamAnalysis opens the live analysis channel: a server-sent-events
// connection that carries agent conversation updates while the
// backend runs the workflow. Events are dispatched to callbacks as
// they arrive; the "complete" event delivers the final results and
// ends the stream. Malformed events are logged and dropped — a single
// bad event never poisons the run.
//
// The returned stream's Cancel stops the run client-side. The ctx
// passed here bounds the whole stream; cancelling it behaves like
// calling Cancel except that the OnError callback fires.
func (c *Client) StreamAnalysis(ctx context.Context, params AnalysisParams, callbacks StreamCallbacks) (*AnalysisStream, error) {
	if params.SessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	if params.Query == "" {
		return nil, fmt.Errorf("api: query is required")
	}
	params = params.withDefaults()

	query := url.Values{}
	query.Set("session_id", params.SessionID)
	query.Set("query", params.Query)
	query.Set("model", params.Model)
	query.Set("temperature", strconv.FormatFloat(params.Temperature, 'g', -1, 64))
	query.Set("workflow_type", params.WorkflowType)

	streamCtx, cancel := context.WithCancel(ctx)

	requestURL := c.baseURL + "/api/analysis/stream?" + query.Encode()
	request, err := http.NewRequestWithContext(streamCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("api: creating stream request: %w", err)
	}
	request.Header.Set("Accept", "text/event-stream")
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("api: opening analysis stream: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
		response.Body.Close()
		cancel()
		return nil, &APIError{StatusCode: response.StatusCode, Body: string(body)}
	}

	stream := &AnalysisStream{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go c.readAnalysisStream(response.Body, stream, callbacks)

	return stream, nil
}

// readAnalysisStream consumes SSE frames from body until a terminal
// event, a transport failure, or cancellation. Runs as the stream's
// single callback goroutine.
func (c *Client) readAnalysisStream(body io.ReadCloser, stream *AnalysisStream, callbacks StreamCallbacks) {
	defer close(stream.done)
	defer body.Close()
	defer stream.cancel()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseSize)

	for scanner.Scan() {
		payload, isData := strings.CutPrefix(scanner.Text(), "data: ")
		if !isData {
			// Comments, event-id lines, and the blank separators
			// between SSE frames.
			continue
		}

		var discriminator streamEventType
		if err := json.Unmarshal([]byte(payload), &discriminator); err != nil {
			c.logger.Warn("dropping malformed analysis event", "error", err)
			continue
		}

		if discriminator.Type == "complete" {
			var complete completePayload
			if err := json.Unmarshal([]byte(payload), &complete); err != nil {
				c.logger.Warn("dropping malformed complete event", "error", err)
				continue
			}
			stream.dispatch(func() {
				if callbacks.OnComplete != nil {
					callbacks.OnComplete(&complete.Results)
				}
			})
			return
		}

		stream.dispatch(func() {
			if callbacks.OnMessage != nil {
				callbacks.OnMessage(StreamEvent{
					Type: discriminator.Type,
					Data: json.RawMessage(payload),
				})
			}
		})
	}

	// The stream ended without a terminal event: either the transport
	// failed or the caller cancelled. Cancellation is silent; anything
	// else is reported once.
	stream.mu.Lock()
	cancelled := stream.closed
	stream.mu.Unlock()
	if cancelled {
		return
	}

	err := scanner.Err()
	if err == nil {
		err = fmt.Errorf("api: analysis stream closed before completion")
	} else {
		err = fmt.Errorf("api: analysis stream connection error: %w", err)
	}
	stream.dispatch(func() {
		if callbacks.OnError != nil {
			callbacks.OnError(err)
		}
	})
}
