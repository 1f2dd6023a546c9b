// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

// Session is one research thread: a topic, the papers fetched for it,
// and any derived vector index and analysis results. Sessions are
// created by the backend (either explicitly or on the first paper
// search) and referenced by id in every subsequent operation.
type Session struct {
	SessionID   string `json:"session_id"`
	Topic       string `json:"topic"`
	PapersCount int    `json:"papers_count"`
	ChunksCount int    `json:"chunks_count"`
	CreatedAt   string `json:"created_at"`
}

// Paper is a single research paper as the backend describes it.
// PDFPath is set once the backend has downloaded the PDF for this
// paper's session; an empty PDFPath means not yet fetched. From the
// client's perspective that field transition is the paper's only
// mutation.
type Paper struct {
	ID              string   `json:"id,omitempty"`
	ArxivID         string   `json:"arxiv_id,omitempty"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Year            string   `json:"year,omitempty"`
	Published       string   `json:"published,omitempty"`
	PrimaryCategory string   `json:"primary_category,omitempty"`
	Abstract        string   `json:"abstract"`
	PDFURL          string   `json:"pdf_url,omitempty"`
	PDFPath         string   `json:"pdf_path,omitempty"`
}

// HasPDF reports whether the backend has a downloaded PDF for this
// paper.
func (p *Paper) HasPDF() bool {
	return p.PDFPath != ""
}

// SearchResult is the response to an arXiv search: the papers found
// plus the id of the session they were stored in, which is newly
// created when the request named none.
type SearchResult struct {
	SessionID string  `json:"session_id"`
	Papers    []Paper `json:"papers"`
}

// ConversationTurn is one entry in a workflow's agent conversation.
// Agent is "researcher", "critic", or "synthesizer"; RespondingTo
// names the agent this turn replies to, when any.
type ConversationTurn struct {
	Agent        string `json:"agent"`
	Role         string `json:"role"`
	Message      string `json:"message"`
	RespondingTo string `json:"responding_to,omitempty"`
}

// WorkflowResults is the outcome of one multi-agent analysis run.
// ConversationHistory is ordered by emission time and append-only
// while a run streams. Synthesis and InsightReport are
// markdown-authored by the backend agents.
type WorkflowResults struct {
	Query               string             `json:"query"`
	ConversationHistory []ConversationTurn `json:"conversation_history"`
	InsightReport       string             `json:"insight_report,omitempty"`
	Synthesis           string             `json:"synthesis"`
	FollowUpQuestions   []string           `json:"follow_up_questions"`
}

// VectorSearchResult is one chunk returned by a vector store query.
type VectorSearchResult struct {
	Text  string           `json:"text"`
	Score float64          `json:"score"`
	Meta  VectorSearchMeta `json:"meta"`
}

// VectorSearchMeta describes where a result chunk came from.
type VectorSearchMeta struct {
	PaperTitle   string `json:"paper_title"`
	Position     int    `json:"position"`
	WordCount    int    `json:"word_count"`
	HasEquations bool   `json:"has_equations,omitempty"`
	HasCitations bool   `json:"has_citations,omitempty"`
}

// VectorStoreStats reports whether a session has a built vector store
// and how many chunks it holds. When Exists is true, ChunksCount
// reflects the last successful build.
type VectorStoreStats struct {
	Exists      bool `json:"exists"`
	ChunksCount int  `json:"chunks_count"`
}

// DownloadResult is the terminal result of a streamed PDF download.
type DownloadResult struct {
	Downloaded int `json:"downloaded"`
	Failed     int `json:"failed"`
}

// BuildResult is the terminal result of a streamed vector store build.
type BuildResult struct {
	ChunksCount  int `json:"chunks_count"`
	EmbeddingDim int `json:"embedding_dim"`
}

// User identifies an authenticated account.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// AnalysisParams configures one analysis run. Zero values for Model,
// Temperature, and WorkflowType are replaced by the defaults the
// backend expects (gpt-4-turbo-preview, 0.7, "standard").
type AnalysisParams struct {
	SessionID    string
	Query        string
	Model        string
	Temperature  float64
	WorkflowType string
}

// Default analysis parameters, applied by [AnalysisParams.withDefaults]
// when the caller leaves the fields unset.
const (
	DefaultModel        = "gpt-4-turbo-preview"
	DefaultTemperature  = 0.7
	DefaultWorkflowType = "standard"
)

func (p AnalysisParams) withDefaults() AnalysisParams {
	if p.Model == "" {
		p.Model = DefaultModel
	}
	if p.Temperature == 0 {
		p.Temperature = DefaultTemperature
	}
	if p.WorkflowType == "" {
		p.WorkflowType = DefaultWorkflowType
	}
	return p
}
