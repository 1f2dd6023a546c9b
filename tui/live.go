// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/report"
)

// Messages bridging the analysis stream into the bubbletea loop.
type (
	streamEventMsg struct {
		event api.StreamEvent
	}
	streamCompleteMsg struct {
		results *api.WorkflowResults
	}
	streamErrorMsg struct {
		err error
	}
	streamCancelledMsg struct{}
)

// agentEvent is the payload of a non-terminal stream event. The
// backend emits agent turns and stage notices through the same
// channel; fields absent for a given type decode to "".
type agentEvent struct {
	Agent        string `json:"agent"`
	Role         string `json:"role"`
	Message      string `json:"message"`
	RespondingTo string `json:"responding_to"`
	Status       string `json:"status"`
}

// LiveModel renders a streaming analysis run: agent turns accumulate
// in a scrollable viewport while a spinner marks the run as active.
// Quitting cancels the stream; completion stores the final results.
type LiveModel struct {
	stream  *api.AnalysisStream
	events  <-chan tea.Msg
	query   string
	theme   report.Theme
	profile termenv.Profile

	spinner  spinner.Model
	viewport viewport.Model
	renderer *report.Renderer

	turns  []api.ConversationTurn
	status string

	results    *api.WorkflowResults
	err        error
	cancelling bool
	done       bool

	width  int
	height int
	ready  bool
}

// NewLiveModel creates a viewer over an open analysis stream whose
// callbacks feed the events channel.
func NewLiveModel(stream *api.AnalysisStream, events <-chan tea.Msg, query string, theme report.Theme, profile termenv.Profile) LiveModel {
	indicator := spinner.New()
	indicator.Spinner = spinner.Dot
	return LiveModel{
		stream:  stream,
		events:  events,
		query:   query,
		theme:   theme,
		profile: profile,
		spinner: indicator,
		status:  "starting analysis",
	}
}

// Results returns the final workflow results, or nil if the run did
// not complete.
func (m LiveModel) Results() *api.WorkflowResults {
	return m.results
}

// Err returns the stream error, if the run failed.
func (m LiveModel) Err() error {
	return m.err
}

// waitForEvent blocks on the stream channel as a bubbletea command.
func (m LiveModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		message, ok := <-m.events
		if !ok {
			return nil
		}
		return message
	}
}

func (m LiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m LiveModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		contentHeight := m.height - 4
		if contentHeight < 3 {
			contentHeight = 3
		}
		if m.ready {
			m.viewport.Width = m.width
			m.viewport.Height = contentHeight
		} else {
			m.viewport = viewport.New(m.width, contentHeight)
			m.ready = true
		}
		m.renderer = report.NewRenderer(m.theme, m.width, m.profile)
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case streamEventMsg:
		m.applyEvent(message.event)
		m.refreshViewport()
		return m, m.waitForEvent()

	case streamCompleteMsg:
		m.results = message.results
		m.done = true
		return m, tea.Quit

	case streamErrorMsg:
		m.err = message.err
		m.done = true
		return m, tea.Quit

	case streamCancelledMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch message.String() {
		case "q", "esc", "ctrl+c":
			if m.cancelling {
				return m, nil
			}
			m.cancelling = true
			m.status = "cancelling"
			// Cancel waits for the callback goroutine, so run it off
			// the update loop while events keep draining.
			stream := m.stream
			return m, func() tea.Msg {
				stream.Cancel()
				return streamCancelledMsg{}
			}
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(message)
		return m, cmd
	}
	return m, nil
}

// applyEvent folds one stream event into the model. Agent turns
// append to the transcript; status-bearing events update the status
// line; anything else is ignored.
func (m *LiveModel) applyEvent(event api.StreamEvent) {
	var payload agentEvent
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return
	}

	if payload.Agent != "" && payload.Message != "" {
		m.turns = append(m.turns, api.ConversationTurn{
			Agent:        payload.Agent,
			Role:         payload.Role,
			Message:      payload.Message,
			RespondingTo: payload.RespondingTo,
		})
		m.status = payload.Agent + " responded"
		return
	}
	if payload.Status != "" {
		m.status = payload.Status
	}
}

// refreshViewport re-renders the transcript and pins the view to the
// bottom so the newest turn stays visible.
func (m *LiveModel) refreshViewport() {
	if !m.ready || m.renderer == nil {
		return
	}
	m.viewport.SetContent(m.renderer.Conversation(m.turns))
	m.viewport.GotoBottom()
}

func (m LiveModel) View() string {
	if m.done {
		return ""
	}

	styler := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(m.profile))
	styler.SetColorProfile(m.profile)
	title := styler.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)
	faint := styler.NewStyle().Foreground(m.theme.FaintText)

	var out strings.Builder
	out.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), title.Render("Analyzing: "+m.query)))
	if m.ready {
		out.WriteString(m.viewport.View() + "\n")
	}
	out.WriteString(faint.Render(m.status) + "\n")
	out.WriteString(faint.Render("q: cancel · ↑/↓: scroll"))
	return out.String()
}

// RunLiveAnalysis opens an analysis stream and displays it until the
// run completes, fails, or the user cancels. Returns the final
// results on completion; a user cancel returns (nil, nil).
func RunLiveAnalysis(ctx context.Context, client *api.Client, params api.AnalysisParams, theme report.Theme, profile termenv.Profile) (*api.WorkflowResults, error) {
	events := make(chan tea.Msg, 64)
	callbacks := api.StreamCallbacks{
		OnMessage: func(event api.StreamEvent) {
			events <- streamEventMsg{event: event}
		},
		OnComplete: func(results *api.WorkflowResults) {
			events <- streamCompleteMsg{results: results}
		},
		OnError: func(err error) {
			events <- streamErrorMsg{err: err}
		},
	}

	stream, err := client.StreamAnalysis(ctx, params, callbacks)
	if err != nil {
		return nil, err
	}

	// No callback fires after the stream's done channel closes, so
	// closing events here lets any pending reader command finish.
	go func() {
		<-stream.Done()
		close(events)
	}()

	program := tea.NewProgram(NewLiveModel(stream, events, params.Query, theme, profile), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		stream.Cancel()
		return nil, fmt.Errorf("tui: running live analysis view: %w", err)
	}

	model := final.(LiveModel)
	if model.Err() != nil {
		return nil, model.Err()
	}
	return model.Results(), nil
}
