// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		BaseURL: server.URL,
		Logger:  slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("default base URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{})
		if err != nil {
			t.Fatalf("NewClient() error: %v", err)
		}
		if client.BaseURL() != DefaultBaseURL {
			t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), DefaultBaseURL)
		}
	})

	t.Run("trailing slash stripped", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://example.test:8000/"})
		if err != nil {
			t.Fatalf("NewClient() error: %v", err)
		}
		if client.BaseURL() != "http://example.test:8000" {
			t.Errorf("BaseURL() = %q", client.BaseURL())
		}
	})
}

func TestErrorPropagation(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))

	_, err := client.GetSession(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not mention the status code", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q does not carry the body text", err)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	t.Run("token attached", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{
			BaseURL:     server.URL,
			TokenSource: StaticToken("abc123"),
		})
		if err != nil {
			t.Fatalf("NewClient() error: %v", err)
		}
		if _, err := client.ListSessions(context.Background()); err != nil {
			t.Fatalf("ListSessions() error: %v", err)
		}
		if gotAuth != "Bearer abc123" {
			t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer abc123")
		}
	})

	t.Run("empty token omitted", func(t *testing.T) {
		var gotAuth string
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte("[]"))
		}))
		if _, err := client.ListSessions(context.Background()); err != nil {
			t.Fatalf("ListSessions() error: %v", err)
		}
		if gotAuth != "" {
			t.Errorf("Authorization = %q, want empty", gotAuth)
		}
	})
}

func TestSessionOperations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Session{
			{SessionID: "s1", Topic: "quantum batteries", PapersCount: 4},
			{SessionID: "s2", Topic: "protein folding", PapersCount: 9, ChunksCount: 120},
		})
	})
	mux.HandleFunc("POST /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Topic string `json:"topic"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(Session{SessionID: "s3", Topic: body.Topic})
	})
	mux.HandleFunc("DELETE /api/sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/sessions/s1/papers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Paper{
			{Title: "Attention Is All You Need", Authors: []string{"Vaswani"}, PDFPath: "/data/s1/p1.pdf"},
			{Title: "Scaling Laws", Authors: []string{"Kaplan"}},
		})
	})

	client, _ := testClient(t, mux)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		sessions, err := client.ListSessions(ctx)
		if err != nil {
			t.Fatalf("ListSessions() error: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("got %d sessions, want 2", len(sessions))
		}
		if sessions[1].ChunksCount != 120 {
			t.Errorf("ChunksCount = %d, want 120", sessions[1].ChunksCount)
		}
	})

	t.Run("create", func(t *testing.T) {
		session, err := client.CreateSession(ctx, "fusion reactors")
		if err != nil {
			t.Fatalf("CreateSession() error: %v", err)
		}
		if session.Topic != "fusion reactors" {
			t.Errorf("Topic = %q", session.Topic)
		}
	})

	t.Run("create requires topic", func(t *testing.T) {
		if _, err := client.CreateSession(ctx, ""); err == nil {
			t.Error("expected error for empty topic")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := client.DeleteSession(ctx, "s1"); err != nil {
			t.Fatalf("DeleteSession() error: %v", err)
		}
	})

	t.Run("papers", func(t *testing.T) {
		papers, err := client.SessionPapers(ctx, "s1")
		if err != nil {
			t.Fatalf("SessionPapers() error: %v", err)
		}
		if len(papers) != 2 {
			t.Fatalf("got %d papers, want 2", len(papers))
		}
		if !papers[0].HasPDF() {
			t.Error("papers[0].HasPDF() = false, want true")
		}
		if papers[1].HasPDF() {
			t.Error("papers[1].HasPDF() = true, want false")
		}
	})
}

func TestAnalysisResults(t *testing.T) {
	t.Run("absent results map to nil", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))

		results, err := client.AnalysisResults(context.Background(), "s1")
		if err != nil {
			t.Fatalf("AnalysisResults() error: %v", err)
		}
		if results != nil {
			t.Errorf("results = %+v, want nil", results)
		}
	})

	t.Run("present results decode", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(WorkflowResults{
				Query:     "what are the common failure modes?",
				Synthesis: "## Findings\nBatteries degrade.",
				ConversationHistory: []ConversationTurn{
					{Agent: "researcher", Role: "assistant", Message: "found three themes"},
				},
				FollowUpQuestions: []string{"what about cost?"},
			})
		}))

		results, err := client.AnalysisResults(context.Background(), "s1")
		if err != nil {
			t.Fatalf("AnalysisResults() error: %v", err)
		}
		if results == nil {
			t.Fatal("results = nil, want value")
		}
		if len(results.ConversationHistory) != 1 {
			t.Errorf("got %d turns, want 1", len(results.ConversationHistory))
		}
	})

	t.Run("non-404 errors propagate", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "backend exploded", http.StatusInternalServerError)
		}))

		if _, err := client.AnalysisResults(context.Background(), "s1"); err == nil {
			t.Error("expected error for 500 response")
		}
	})
}

func TestStartAnalysisDefaults(t *testing.T) {
	var gotRequest map[string]any
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotRequest)
		json.NewEncoder(w).Encode(WorkflowResults{Query: "q"})
	}))

	_, err := client.StartAnalysis(context.Background(), AnalysisParams{
		SessionID: "s1",
		Query:     "q",
	})
	if err != nil {
		t.Fatalf("StartAnalysis() error: %v", err)
	}

	if gotRequest["model"] != DefaultModel {
		t.Errorf("model = %v, want %q", gotRequest["model"], DefaultModel)
	}
	if gotRequest["temperature"] != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", gotRequest["temperature"], DefaultTemperature)
	}
	if gotRequest["workflow_type"] != DefaultWorkflowType {
		t.Errorf("workflow_type = %v, want %q", gotRequest["workflow_type"], DefaultWorkflowType)
	}
}

func TestFetchArxivResponseShapes(t *testing.T) {
	t.Run("object with session id", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/papers/fetch-arxiv", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"session_id": "s-new", "papers": [{"title": "Paper A"}, {"title": "Paper B"}]}`)
		})
		client, _ := testClient(t, mux)

		result, err := client.FetchArxiv(context.Background(), "batteries", 0, "")
		if err != nil {
			t.Fatalf("FetchArxiv() error: %v", err)
		}
		if result.SessionID != "s-new" {
			t.Errorf("SessionID = %q, want s-new", result.SessionID)
		}
		if len(result.Papers) != 2 || result.Papers[0].Title != "Paper A" {
			t.Errorf("Papers = %+v, want [Paper A, Paper B]", result.Papers)
		}
	})

	t.Run("bare paper array", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/papers/fetch-arxiv", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "\n  [{\"title\": \"A\"}, {\"title\": \"B\"}]")
		})
		client, _ := testClient(t, mux)

		result, err := client.FetchArxiv(context.Background(), "batteries", 0, "")
		if err != nil {
			t.Fatalf("FetchArxiv() error: %v", err)
		}
		if result.SessionID != "" {
			t.Errorf("SessionID = %q for array response, want empty", result.SessionID)
		}
		if len(result.Papers) != 2 || result.Papers[1].Title != "B" {
			t.Errorf("Papers = %+v, want [A, B]", result.Papers)
		}
	})
}

func TestClampSearchResults(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{1, 2},
		{2, 2},
		{10, 10},
		{20, 20},
		{100, 20},
	}
	for _, test := range tests {
		if got := ClampSearchResults(test.in); got != test.want {
			t.Errorf("ClampSearchResults(%d) = %d, want %d", test.in, got, test.want)
		}
	}
}
