// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/report"
)

func pickerSessions() []api.Session {
	return []api.Session{
		{SessionID: "s1", Topic: "quantum batteries", PapersCount: 4},
		{SessionID: "s2", Topic: "protein folding", PapersCount: 9},
		{SessionID: "s3", Topic: "battery recycling", PapersCount: 2},
	}
}

func typeString(t *testing.T, model PickerModel, input string) PickerModel {
	t.Helper()
	for _, r := range input {
		updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = updated.(PickerModel)
	}
	return model
}

func TestPickerFilters(t *testing.T) {
	model := NewPicker(pickerSessions(), report.DefaultTheme, termenv.ANSI256)
	if len(model.matches) != 3 {
		t.Fatalf("initial matches = %d, want 3", len(model.matches))
	}

	model = typeString(t, model, "batter")
	if len(model.matches) != 2 {
		t.Fatalf("matches after %q = %d, want 2", "batter", len(model.matches))
	}
	for _, match := range model.matches {
		if match.session.SessionID == "s2" {
			t.Error("protein folding survived a battery filter")
		}
	}
}

func TestPickerSelectsOnEnter(t *testing.T) {
	model := NewPicker(pickerSessions(), report.DefaultTheme, termenv.ANSI256)
	model = typeString(t, model, "protein")

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(PickerModel)
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}

	choice := model.Choice()
	if choice == nil {
		t.Fatal("Choice() = nil after enter")
	}
	if choice.SessionID != "s2" {
		t.Errorf("Choice() = %q, want s2", choice.SessionID)
	}
}

func TestPickerCursorMovement(t *testing.T) {
	model := NewPicker(pickerSessions(), report.DefaultTheme, termenv.ANSI256)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(PickerModel)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(PickerModel)
	if model.cursor != 2 {
		t.Errorf("cursor = %d after two downs, want 2", model.cursor)
	}

	// Cursor clamps at the end of the list.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(PickerModel)
	if model.cursor != 2 {
		t.Errorf("cursor = %d past list end, want 2", model.cursor)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(PickerModel)
	if choice := model.Choice(); choice == nil || choice.SessionID != "s3" {
		t.Errorf("Choice() = %+v, want s3", choice)
	}
}

func TestPickerCancel(t *testing.T) {
	model := NewPicker(pickerSessions(), report.DefaultTheme, termenv.ANSI256)
	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(PickerModel)
	if cmd == nil {
		t.Fatal("escape should quit the program")
	}
	if model.Choice() != nil {
		t.Errorf("Choice() = %+v after cancel, want nil", model.Choice())
	}
}

func TestPickerBackspaceWidensFilter(t *testing.T) {
	model := NewPicker(pickerSessions(), report.DefaultTheme, termenv.ANSI256)
	model = typeString(t, model, "proteinx")
	if len(model.matches) != 0 {
		t.Fatalf("matches = %d for impossible query, want 0", len(model.matches))
	}

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	model = updated.(PickerModel)
	if len(model.matches) != 1 {
		t.Errorf("matches = %d after backspace, want 1", len(model.matches))
	}
}
