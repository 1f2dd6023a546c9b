// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

type progressCall struct {
	Current int
	Total   int
	Status  string
}

func collectProgress(calls *[]progressCall) ProgressFunc {
	return func(current, total int, status string) {
		*calls = append(*calls, progressCall{current, total, status})
	}
}

func TestProgressParserChunkBoundaries(t *testing.T) {
	body := "data: {\"current\": 1, \"total\": 3, \"status\": \"fetching paper 1\"}\n" +
		"data: {\"current\": 2, \"total\": 3, \"status\": \"fetching paper 2\"}\n" +
		"data: {\"current\": 3, \"total\": 3, \"status\": \"done\"}\n" +
		"{\"downloaded\": 3, \"failed\": 0}\n"

	wantCalls := []progressCall{
		{1, 3, "fetching paper 1"},
		{2, 3, "fetching paper 2"},
		{3, 3, "done"},
	}
	wantTerminal := `{"downloaded": 3, "failed": 0}`

	// Every chunk size must produce identical output, including sizes
	// that split lines mid-JSON.
	for _, chunkSize := range []int{1, 2, 3, 7, 16, 64, len(body)} {
		t.Run(fmt.Sprintf("chunk size %d", chunkSize), func(t *testing.T) {
			var calls []progressCall
			parser := newProgressParser(collectProgress(&calls))

			for start := 0; start < len(body); start += chunkSize {
				end := start + chunkSize
				if end > len(body) {
					end = len(body)
				}
				parser.feed([]byte(body[start:end]))
			}
			terminal := parser.finish()

			if !reflect.DeepEqual(calls, wantCalls) {
				t.Errorf("progress calls = %+v, want %+v", calls, wantCalls)
			}
			if string(terminal) != wantTerminal {
				t.Errorf("terminal = %q, want %q", terminal, wantTerminal)
			}
		})
	}
}

func TestProgressParserMalformedLines(t *testing.T) {
	var calls []progressCall
	parser := newProgressParser(collectProgress(&calls))

	parser.feed([]byte("data: {\"current\": 1, \"total\": 4, \"status\": \"ok\"}\n"))
	parser.feed([]byte("data: {not json at all\n"))
	parser.feed([]byte("data: {\"status\": \"missing counts\"}\n"))
	parser.feed([]byte("data: {\"current\": 2, \"status\": \"missing total\"}\n"))
	parser.feed([]byte("data: {\"current\": 4, \"total\": 4, \"status\": \"ok\"}\n"))
	parser.feed([]byte("{\"downloaded\": 4, \"failed\": 0}"))
	terminal := parser.finish()

	want := []progressCall{
		{1, 4, "ok"},
		{4, 4, "ok"},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %+v, want %+v", calls, want)
	}
	if string(terminal) != `{"downloaded": 4, "failed": 0}` {
		t.Errorf("terminal = %q", terminal)
	}
}

func TestProgressParserZeroCounts(t *testing.T) {
	// Zero is a valid count; only absent fields are dropped.
	var calls []progressCall
	parser := newProgressParser(collectProgress(&calls))
	parser.feed([]byte("data: {\"current\": 0, \"total\": 0}\n"))
	parser.finish()

	want := []progressCall{{0, 0, ""}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %+v, want %+v", calls, want)
	}
}

func TestProgressParserTerminalWithoutNewline(t *testing.T) {
	parser := newProgressParser(nil)
	parser.feed([]byte(`{"chunks_count": 512,`))
	parser.feed([]byte(` "embedding_dim": 1536}`))
	terminal := parser.finish()

	if string(terminal) != `{"chunks_count": 512, "embedding_dim": 1536}` {
		t.Errorf("terminal = %q", terminal)
	}
}

func TestDownloadPDFs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"current\": 1, \"total\": 2, \"status\": \"paper one\"}\n")
		flusher.Flush()
		fmt.Fprint(w, "data: {\"current\": 2, \"total\": 2, \"status\": \"paper two\"}\n")
		flusher.Flush()
		fmt.Fprint(w, "{\"downloaded\": 2, \"failed\": 0}\n")
	})
	client, _ := testClient(t, handler)

	var calls []progressCall
	result, err := client.DownloadPDFs(context.Background(), "s1", collectProgress(&calls))
	if err != nil {
		t.Fatalf("DownloadPDFs() error: %v", err)
	}

	if result.Downloaded != 2 || result.Failed != 0 {
		t.Errorf("result = %+v, want downloaded 2 failed 0", result)
	}
	want := []progressCall{
		{1, 2, "paper one"},
		{2, 2, "paper two"},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %+v, want %+v", calls, want)
	}
}

func TestBuildVectorStoreErrorBeforeProgress(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no PDFs downloaded for session", http.StatusBadRequest)
	}))

	var calls []progressCall
	_, err := client.BuildVectorStore(context.Background(), "s1", collectProgress(&calls))
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if len(calls) != 0 {
		t.Errorf("progress fired %d times on a failed operation, want 0", len(calls))
	}
}

func TestStreamOperationEmptyTerminal(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"current\": 1, \"total\": 1}\n")
	}))

	_, err := client.DownloadPDFs(context.Background(), "s1", nil)
	if err == nil {
		t.Fatal("expected error when the stream ends without a result")
	}
}
