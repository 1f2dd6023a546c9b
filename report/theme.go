// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Theme is the terminal color scheme for rendered reports.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Section chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color

	// Agent colors, keyed by the agent names the backend emits.
	AgentResearcher  lipgloss.Color
	AgentCritic      lipgloss.Color
	AgentSynthesizer lipgloss.Color

	// Relevance score highlighting for vector search results.
	ScoreHigh lipgloss.Color
	ScoreLow  lipgloss.Color
}

// AgentColor returns the color for an agent name. Unknown agents get
// FaintText.
func (theme Theme) AgentColor(agent string) lipgloss.Color {
	switch agent {
	case "researcher":
		return theme.AgentResearcher
	case "critic":
		return theme.AgentCritic
	case "synthesizer":
		return theme.AgentSynthesizer
	default:
		return theme.FaintText
	}
}

// ColorProfile maps a configured color mode to a termenv profile.
// "always" forces 256-color output, "never" disables all styling, and
// "auto" (the default) picks by whether stdout is a terminal.
func ColorProfile(mode string) termenv.Profile {
	switch mode {
	case "always":
		return termenv.ANSI256
	case "never":
		return termenv.Ascii
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return termenv.ANSI256
	}
	return termenv.Ascii
}

// DefaultTheme is the built-in dark-terminal color scheme, designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),

	AgentResearcher:  lipgloss.Color("75"),  // blue
	AgentCritic:      lipgloss.Color("208"), // orange
	AgentSynthesizer: lipgloss.Color("114"), // green

	ScoreHigh: lipgloss.Color("114"), // green
	ScoreLow:  lipgloss.Color("245"), // gray
}
