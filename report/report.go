// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders backend data for terminals: analysis results
// with their agent conversation, paper listings, and vector search
// hits. Markdown authored by the backend agents (synthesis, insight
// report) goes through a goldmark-based renderer; everything else is
// assembled directly with lipgloss styles.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/researchagent-labs/researchagent/api"
)

// Renderer formats backend data for one terminal.
type Renderer struct {
	theme   Theme
	width   int
	profile termenv.Profile
	styler  *lipgloss.Renderer
}

// NewRenderer creates a renderer for the given width and color
// profile. Widths below 40 are clamped to 40; use ColorProfile to map
// a configured color mode to a profile.
func NewRenderer(theme Theme, width int, profile termenv.Profile) *Renderer {
	if width < 40 {
		width = 40
	}
	styler := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(profile))
	styler.SetColorProfile(profile)
	return &Renderer{theme: theme, width: width, profile: profile, styler: styler}
}

func (r *Renderer) style() lipgloss.Style {
	return r.styler.NewStyle()
}

func (r *Renderer) sectionHeader(title string) string {
	header := r.style().Bold(true).Foreground(r.theme.HeaderForeground).Render(title)
	rule := r.style().Foreground(r.theme.BorderColor).Render(strings.Repeat("─", r.width))
	return header + "\n" + rule
}

// Results renders a complete analysis: the synthesis, the agent
// conversation that produced it, the insight report when present, and
// the follow-up questions.
func (r *Renderer) Results(results *api.WorkflowResults) string {
	var out strings.Builder

	if results.Query != "" {
		faint := r.style().Foreground(r.theme.FaintText)
		out.WriteString(faint.Render("Query: "+results.Query) + "\n\n")
	}

	if len(results.ConversationHistory) > 0 {
		out.WriteString(r.sectionHeader("Agent Conversation") + "\n\n")
		out.WriteString(r.Conversation(results.ConversationHistory))
		out.WriteString("\n")
	}

	if results.Synthesis != "" {
		out.WriteString(r.sectionHeader("Synthesis") + "\n\n")
		out.WriteString(RenderMarkdown(results.Synthesis, r.theme, r.width, r.profile))
		out.WriteString("\n\n")
	}

	if results.InsightReport != "" {
		out.WriteString(r.sectionHeader("Insight Report") + "\n\n")
		out.WriteString(RenderMarkdown(results.InsightReport, r.theme, r.width, r.profile))
		out.WriteString("\n\n")
	}

	if len(results.FollowUpQuestions) > 0 {
		out.WriteString(r.sectionHeader("Follow-up Questions") + "\n\n")
		for i, question := range results.FollowUpQuestions {
			line := fmt.Sprintf("%d. %s", i+1, question)
			out.WriteString(ansi.Wrap(line, r.width, wrapBreakpoints) + "\n")
		}
	}

	return strings.TrimRight(out.String(), "\n") + "\n"
}

// Conversation renders the agent turns with colored speaker labels.
func (r *Renderer) Conversation(turns []api.ConversationTurn) string {
	var out strings.Builder
	for _, turn := range turns {
		out.WriteString(r.Turn(turn) + "\n")
	}
	return out.String()
}

// Turn renders one conversation turn: a colored agent label, the
// reply target when present, then the message reflowed to width.
func (r *Renderer) Turn(turn api.ConversationTurn) string {
	label := r.style().Bold(true).Foreground(r.theme.AgentColor(turn.Agent)).Render(turn.Agent)
	if turn.RespondingTo != "" {
		arrow := r.style().Foreground(r.theme.FaintText).
			Render(" → " + turn.RespondingTo)
		label += arrow
	}
	message := ansi.Wrap(turn.Message, r.width, wrapBreakpoints)
	return label + "\n" + message + "\n"
}

// Papers renders a session's paper list. Papers with a downloaded PDF
// are marked; the order is the backend's.
func (r *Renderer) Papers(papers []api.Paper) string {
	if len(papers) == 0 {
		return "no papers in session\n"
	}

	var out strings.Builder
	faint := r.style().Foreground(r.theme.FaintText)
	for i := range papers {
		paper := &papers[i]

		marker := faint.Render("[ ]")
		if paper.HasPDF() {
			marker = r.style().Foreground(r.theme.ScoreHigh).Render("[✓]")
		}

		title := r.style().Bold(true).Foreground(r.theme.NormalText).Render(paper.Title)
		out.WriteString(fmt.Sprintf("%s %s\n", marker, title))

		var details []string
		if len(paper.Authors) > 0 {
			details = append(details, strings.Join(paper.Authors, ", "))
		}
		if paper.Year != "" {
			details = append(details, paper.Year)
		}
		if paper.ArxivID != "" {
			details = append(details, "arXiv:"+paper.ArxivID)
		}
		if len(details) > 0 {
			line := ansi.Wrap(strings.Join(details, " · "), r.width-4, wrapBreakpoints)
			for _, detail := range strings.Split(line, "\n") {
				out.WriteString("    " + faint.Render(detail) + "\n")
			}
		}
	}
	return out.String()
}

// VectorResults renders vector store query hits with their relevance
// scores and source papers.
func (r *Renderer) VectorResults(results []api.VectorSearchResult) string {
	if len(results) == 0 {
		return "no matching chunks\n"
	}

	var out strings.Builder
	faint := r.style().Foreground(r.theme.FaintText)
	for i, result := range results {
		scoreColor := r.theme.ScoreLow
		if result.Score >= 0.5 {
			scoreColor = r.theme.ScoreHigh
		}
		score := r.style().Bold(true).Foreground(scoreColor).
			Render(fmt.Sprintf("%.3f", result.Score))

		out.WriteString(fmt.Sprintf("%d. %s  %s\n", i+1, score,
			faint.Render(result.Meta.PaperTitle)))

		text := ansi.Wrap(strings.TrimSpace(result.Text), r.width-3, wrapBreakpoints)
		for _, line := range strings.Split(text, "\n") {
			out.WriteString("   " + line + "\n")
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n") + "\n"
}
