// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"
	"github.com/muesli/termenv"

	"github.com/researchagent-labs/researchagent/api"
	"github.com/researchagent-labs/researchagent/report"
)

// pickerMatch is one session row surviving the current filter.
type pickerMatch struct {
	session api.Session
	score   int
}

// PickerModel is a fuzzy finder over research sessions: type to
// narrow, arrows to move, enter to select, escape to cancel.
type PickerModel struct {
	sessions []api.Session
	theme    report.Theme
	profile  termenv.Profile
	slab     *util.Slab

	query   string
	matches []pickerMatch
	cursor  int

	width  int
	height int

	choice    *api.Session
	cancelled bool
	done      bool
}

// NewPicker creates a picker over the given sessions.
func NewPicker(sessions []api.Session, theme report.Theme, profile termenv.Profile) PickerModel {
	model := PickerModel{
		sessions: sessions,
		theme:    theme,
		profile:  profile,
		slab:     NewSlab(),
		width:    80,
		height:   24,
	}
	model.refilter()
	return model
}

// Choice returns the selected session, or nil if the picker was
// cancelled.
func (m PickerModel) Choice() *api.Session {
	if m.cancelled {
		return nil
	}
	return m.choice
}

// label is the text the fuzzy filter sees for a session.
func sessionLabel(session *api.Session) string {
	return session.Topic + " " + session.SessionID
}

// refilter recomputes matches for the current query. An empty query
// keeps the backend's ordering; otherwise matches sort by descending
// fzf score, ties by original position.
func (m *PickerModel) refilter() {
	m.matches = m.matches[:0]
	pattern := []rune(m.query)

	for i := range m.sessions {
		session := m.sessions[i]
		if len(pattern) == 0 {
			m.matches = append(m.matches, pickerMatch{session: session})
			continue
		}
		result := FuzzyMatch(sessionLabel(&session), pattern, m.slab)
		if result.Score > 0 {
			m.matches = append(m.matches, pickerMatch{session: session, score: result.Score})
		}
	}

	if len(pattern) > 0 {
		slices.SortStableFunc(m.matches, func(a, b pickerMatch) int {
			return b.score - a.score
		})
	}

	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height

	case tea.KeyMsg:
		switch message.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit

		case "enter":
			if len(m.matches) > 0 {
				session := m.matches[m.cursor].session
				m.choice = &session
			}
			m.done = true
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}

		case "backspace":
			if len(m.query) > 0 {
				runes := []rune(m.query)
				m.query = string(runes[:len(runes)-1])
				m.refilter()
			}

		default:
			if message.Type == tea.KeyRunes {
				m.query += string(message.Runes)
				m.refilter()
			}
		}
	}

	return m, nil
}

func (m PickerModel) View() string {
	if m.done {
		return ""
	}

	styler := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(m.profile))
	styler.SetColorProfile(m.profile)
	prompt := styler.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)
	faint := styler.NewStyle().Foreground(m.theme.FaintText)
	selected := styler.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)

	var out strings.Builder
	out.WriteString(prompt.Render("session> ") + m.query + "\n")
	out.WriteString(faint.Render(fmt.Sprintf("%d/%d", len(m.matches), len(m.sessions))) + "\n")

	visible := m.height - 3
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.matches) && i < start+visible; i++ {
		session := &m.matches[i].session
		details := faint.Render(fmt.Sprintf("(%d papers, %d chunks)", session.PapersCount, session.ChunksCount))
		if i == m.cursor {
			out.WriteString(selected.Render("> "+session.Topic) + "  " + details + "\n")
		} else {
			out.WriteString("  " + session.Topic + "  " + details + "\n")
		}
	}

	return out.String()
}

// PickSession runs the picker full-screen and returns the chosen
// session, or nil when the user cancelled.
func PickSession(sessions []api.Session, theme report.Theme, profile termenv.Profile) (*api.Session, error) {
	program := tea.NewProgram(NewPicker(sessions, theme, profile), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("tui: running session picker: %w", err)
	}
	return final.(PickerModel).Choice(), nil
}
