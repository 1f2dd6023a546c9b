// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/report"
)

func agentMessage(t *testing.T, agent, message string) api.StreamEvent {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"type":    "agent_message",
		"agent":   agent,
		"message": message,
	})
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	return api.StreamEvent{Type: "agent_message", Data: data}
}

func TestLiveModelAccumulatesTurns(t *testing.T) {
	model := NewLiveModel(nil, nil, "what limits capacity?", report.DefaultTheme, termenv.ANSI256)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(LiveModel)

	updated, _ = model.Update(streamEventMsg{event: agentMessage(t, "researcher", "found three papers")})
	model = updated.(LiveModel)
	updated, _ = model.Update(streamEventMsg{event: agentMessage(t, "critic", "one claim is weak")})
	model = updated.(LiveModel)

	if len(model.turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(model.turns))
	}
	if model.turns[1].Agent != "critic" {
		t.Errorf("second turn agent = %q, want critic", model.turns[1].Agent)
	}

	view := ansi.Strip(model.View())
	if !strings.Contains(view, "Analyzing: what limits capacity?") {
		t.Errorf("view missing title:\n%s", view)
	}
	if !strings.Contains(view, "found three papers") {
		t.Errorf("view missing transcript:\n%s", view)
	}
}

func TestLiveModelStatusEvents(t *testing.T) {
	model := NewLiveModel(nil, nil, "q", report.DefaultTheme, termenv.ANSI256)

	data, _ := json.Marshal(map[string]string{"type": "stage", "status": "building context"})
	updated, _ := model.Update(streamEventMsg{event: api.StreamEvent{Type: "stage", Data: data}})
	model = updated.(LiveModel)

	if model.status != "building context" {
		t.Errorf("status = %q, want %q", model.status, "building context")
	}
	if len(model.turns) != 0 {
		t.Errorf("status event appended a turn: %+v", model.turns)
	}
}

func TestLiveModelCompletion(t *testing.T) {
	model := NewLiveModel(nil, nil, "q", report.DefaultTheme, termenv.ANSI256)

	results := &api.WorkflowResults{Query: "q", Synthesis: "done"}
	updated, cmd := model.Update(streamCompleteMsg{results: results})
	model = updated.(LiveModel)

	if cmd == nil {
		t.Fatal("completion should quit the program")
	}
	if model.Results() == nil || model.Results().Synthesis != "done" {
		t.Errorf("Results() = %+v", model.Results())
	}
	if model.Err() != nil {
		t.Errorf("Err() = %v, want nil", model.Err())
	}
}

func TestLiveModelError(t *testing.T) {
	model := NewLiveModel(nil, nil, "q", report.DefaultTheme, termenv.ANSI256)

	updated, cmd := model.Update(streamErrorMsg{err: &api.APIError{StatusCode: 502, Body: "bad gateway"}})
	model = updated.(LiveModel)

	if cmd == nil {
		t.Fatal("stream error should quit the program")
	}
	if model.Err() == nil {
		t.Error("Err() = nil after stream error")
	}
	if model.Results() != nil {
		t.Errorf("Results() = %+v after error, want nil", model.Results())
	}
}

func TestLiveModelMalformedEventIgnored(t *testing.T) {
	model := NewLiveModel(nil, nil, "q", report.DefaultTheme, termenv.ANSI256)

	updated, _ := model.Update(streamEventMsg{event: api.StreamEvent{Type: "x", Data: []byte("{broken")}})
	model = updated.(LiveModel)

	if len(model.turns) != 0 {
		t.Errorf("malformed event appended a turn: %+v", model.turns)
	}
}
