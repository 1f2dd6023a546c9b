// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/researchagent-labs/researchagent/api"
)

// Stage names one pipeline step. Stages are mutually exclusive: at
// most one may be in flight per orchestrator.
type Stage string

const (
	StageSearch   Stage = "search"
	StageDownload Stage = "download"
	StageBuild    Stage = "build"
	StageAnalyze  Stage = "analyze"
)

var (
	// ErrStageInProgress is returned when a stage is requested while
	// another (or the same) stage is still running.
	ErrStageInProgress = errors.New("workflow: stage already in progress")

	// ErrNoSession is returned by operations that need a selected
	// session when none is.
	ErrNoSession = errors.New("workflow: no session selected")

	// ErrNoPapers guards the download stage: there is nothing to
	// download until a search has loaded papers.
	ErrNoPapers = errors.New("workflow: session has no papers")

	// ErrNoPDFs guards the build stage: the vector store is built from
	// downloaded PDFs, so at least one paper must have one.
	ErrNoPDFs = errors.New("workflow: no papers have downloaded PDFs")
)

// Backend is the slice of the API client the orchestrator drives.
// *api.Client satisfies it.
type Backend interface {
	GetSession(ctx context.Context, id string) (*api.Session, error)
	CreateSession(ctx context.Context, topic string) (*api.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SessionPapers(ctx context.Context, id string) ([]api.Paper, error)
	FetchArxiv(ctx context.Context, query string, maxResults int, sessionID string) (*api.SearchResult, error)
	DownloadPDFs(ctx context.Context, sessionID string, onProgress api.ProgressFunc) (*api.DownloadResult, error)
	BuildVectorStore(ctx context.Context, sessionID string, onProgress api.ProgressFunc) (*api.BuildResult, error)
	StartAnalysis(ctx context.Context, params api.AnalysisParams) (*api.WorkflowResults, error)
	AnalysisResults(ctx context.Context, sessionID string) (*api.WorkflowResults, error)
	VectorStats(ctx context.Context, sessionID string) (*api.VectorStoreStats, error)
}

// Progress is the latest progress report from an in-flight stage.
type Progress struct {
	Current int
	Total   int
	Status  string
}

// Snapshot is a point-in-time copy of the orchestrator state, safe to
// render without holding any lock.
type Snapshot struct {
	Session     *api.Session
	Papers      []api.Paper
	VectorStats *api.VectorStoreStats
	Results     *api.WorkflowResults

	// ActiveStage is "" when no stage is running.
	ActiveStage Stage
	Progress    Progress
}

// Orchestrator owns the client-side state of one research workflow.
// All methods are safe for concurrent use; blocking operations take a
// context and hold no lock while waiting on the backend.
type Orchestrator struct {
	backend Backend
	logger  *slog.Logger

	mu       sync.Mutex
	session  *api.Session
	papers   []api.Paper
	stats    *api.VectorStoreStats
	results  *api.WorkflowResults
	active   Stage
	progress Progress
}

// New creates an orchestrator with no session selected.
func New(backend Backend, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{backend: backend, logger: logger}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := Snapshot{
		ActiveStage: o.active,
		Progress:    o.progress,
	}
	if o.session != nil {
		session := *o.session
		snapshot.Session = &session
	}
	if o.papers != nil {
		snapshot.Papers = append([]api.Paper(nil), o.papers...)
		// Paper values share their Authors backing array with the
		// originals; copy those too so the snapshot is fully detached.
		for i := range snapshot.Papers {
			if authors := snapshot.Papers[i].Authors; authors != nil {
				snapshot.Papers[i].Authors = append([]string(nil), authors...)
			}
		}
	}
	if o.stats != nil {
		stats := *o.stats
		snapshot.VectorStats = &stats
	}
	if o.results != nil {
		results := *o.results
		if results.ConversationHistory != nil {
			results.ConversationHistory = append([]api.ConversationTurn(nil), results.ConversationHistory...)
		}
		if results.FollowUpQuestions != nil {
			results.FollowUpQuestions = append([]string(nil), results.FollowUpQuestions...)
		}
		snapshot.Results = &results
	}
	return snapshot
}

// SessionID returns the current session id, or "".
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return ""
	}
	return o.session.SessionID
}

// begin claims the stage slot after running guard under the lock.
// Callers must pair every successful begin with finish.
func (o *Orchestrator) begin(stage Stage, guard func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != "" {
		return fmt.Errorf("%w: %s", ErrStageInProgress, o.active)
	}
	if guard != nil {
		if err := guard(); err != nil {
			return err
		}
	}
	o.active = stage
	o.progress = Progress{}
	return nil
}

// finish releases the stage slot. Cached papers, stats, and results
// are left alone: a failed stage loses only its in-flight status, not
// what earlier stages produced.
func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.active = ""
	o.mu.Unlock()
}

// recordProgress stores the latest progress report and forwards it.
func (o *Orchestrator) recordProgress(forward api.ProgressFunc) api.ProgressFunc {
	return func(current, total int, status string) {
		o.mu.Lock()
		o.progress = Progress{Current: current, Total: total, Status: status}
		o.mu.Unlock()
		if forward != nil {
			forward(current, total, status)
		}
	}
}

// reset clears all per-session state. Caller holds the lock.
func (o *Orchestrator) reset() {
	o.session = nil
	o.papers = nil
	o.stats = nil
	o.results = nil
	o.progress = Progress{}
}

// SelectSession switches the orchestrator to the named session,
// resetting papers, vector stats, results, and progress before
// loading the new session's data. An empty id deselects and resets.
// Refused while a stage is in flight.
func (o *Orchestrator) SelectSession(ctx context.Context, id string) error {
	o.mu.Lock()
	if o.active != "" {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStageInProgress, o.active)
	}
	o.reset()
	o.mu.Unlock()

	if id == "" {
		return nil
	}

	session, err := o.backend.GetSession(ctx, id)
	if err != nil {
		return err
	}
	papers, err := o.backend.SessionPapers(ctx, id)
	if err != nil {
		return err
	}

	stats, err := o.backend.VectorStats(ctx, id)
	if err != nil {
		// A session without a vector store is normal early in the
		// pipeline; anything else still should not block selection.
		if !api.IsNotFound(err) {
			o.logger.Warn("loading vector stats", "session", id, "error", err)
		}
		stats = nil
	}

	o.mu.Lock()
	o.session = session
	o.papers = papers
	o.stats = stats
	o.mu.Unlock()
	return nil
}

// NewSession creates a session for topic and selects it.
func (o *Orchestrator) NewSession(ctx context.Context, topic string) (*api.Session, error) {
	o.mu.Lock()
	if o.active != "" {
		stage := o.active
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrStageInProgress, stage)
	}
	o.mu.Unlock()

	session, err := o.backend.CreateSession(ctx, topic)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.reset()
	o.session = session
	o.mu.Unlock()
	return session, nil
}

// DeleteSession removes a session on the backend. Deleting the
// currently selected session deselects it.
func (o *Orchestrator) DeleteSession(ctx context.Context, id string) error {
	if err := o.backend.DeleteSession(ctx, id); err != nil {
		return err
	}
	o.mu.Lock()
	if o.session != nil && o.session.SessionID == id {
		o.reset()
	}
	o.mu.Unlock()
	return nil
}

// Search fetches papers from arXiv into the current session. With no
// session selected, the backend creates one for the query and the
// orchestrator adopts it. The loaded paper list is replaced by the
// search response.
func (o *Orchestrator) Search(ctx context.Context, query string, maxResults int) ([]api.Paper, error) {
	if err := o.begin(StageSearch, nil); err != nil {
		return nil, err
	}
	defer o.finish()

	result, err := o.backend.FetchArxiv(ctx, query, maxResults, o.SessionID())
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.session == nil {
		o.session = &api.Session{SessionID: result.SessionID, Topic: query}
		o.logger.Info("adopted new session", "session", result.SessionID, "topic", query)
	}
	o.papers = result.Papers
	o.session.PapersCount = len(result.Papers)
	o.mu.Unlock()
	return result.Papers, nil
}

// Download asks the backend to fetch PDFs for every paper in the
// session, then refreshes the paper list so pdf_path fields reflect
// what landed. Requires a selected session with papers.
func (o *Orchestrator) Download(ctx context.Context, onProgress api.ProgressFunc) (*api.DownloadResult, error) {
	err := o.begin(StageDownload, func() error {
		if o.session == nil {
			return ErrNoSession
		}
		if len(o.papers) == 0 {
			return ErrNoPapers
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer o.finish()

	sessionID := o.SessionID()
	result, err := o.backend.DownloadPDFs(ctx, sessionID, o.recordProgress(onProgress))
	if err != nil {
		return nil, err
	}

	papers, err := o.backend.SessionPapers(ctx, sessionID)
	if err != nil {
		o.logger.Warn("refreshing papers after download", "session", sessionID, "error", err)
	} else {
		o.mu.Lock()
		o.papers = papers
		o.mu.Unlock()
	}
	return result, nil
}

// Build asks the backend to chunk, embed, and index the session's
// downloaded PDFs. Requires at least one paper with a PDF.
func (o *Orchestrator) Build(ctx context.Context, onProgress api.ProgressFunc) (*api.BuildResult, error) {
	err := o.begin(StageBuild, func() error {
		if o.session == nil {
			return ErrNoSession
		}
		for i := range o.papers {
			if o.papers[i].HasPDF() {
				return nil
			}
		}
		return ErrNoPDFs
	})
	if err != nil {
		return nil, err
	}
	defer o.finish()

	result, err := o.backend.BuildVectorStore(ctx, o.SessionID(), o.recordProgress(onProgress))
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.stats = &api.VectorStoreStats{Exists: true, ChunksCount: result.ChunksCount}
	if o.session != nil {
		o.session.ChunksCount = result.ChunksCount
	}
	o.mu.Unlock()
	return result, nil
}

// Analyze runs the multi-agent workflow to completion and caches its
// results. Requires a selected session with at least one paper. The
// SessionID field of params is filled in by the orchestrator.
func (o *Orchestrator) Analyze(ctx context.Context, params api.AnalysisParams) (*api.WorkflowResults, error) {
	err := o.begin(StageAnalyze, func() error {
		if o.session == nil {
			return ErrNoSession
		}
		if len(o.papers) == 0 {
			return ErrNoPapers
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer o.finish()

	params.SessionID = o.SessionID()
	results, err := o.backend.StartAnalysis(ctx, params)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.results = results
	o.mu.Unlock()
	return results, nil
}

// AdoptResults caches results produced outside the orchestrator, such
// as a completed live analysis stream.
func (o *Orchestrator) AdoptResults(results *api.WorkflowResults) {
	o.mu.Lock()
	o.results = results
	o.mu.Unlock()
}

// LoadResults fetches the stored analysis results for the current
// session. Returns nil without error when the session has none.
func (o *Orchestrator) LoadResults(ctx context.Context) (*api.WorkflowResults, error) {
	sessionID := o.SessionID()
	if sessionID == "" {
		return nil, ErrNoSession
	}
	results, err := o.backend.AnalysisResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if results != nil {
		o.mu.Lock()
		o.results = results
		o.mu.Unlock()
	}
	return results, nil
}
