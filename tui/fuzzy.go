// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

func init() {
	// fzf's matcher reads package-level character-class tables that
	// algo.Init populates; without it uppercase input never matches.
	algo.Init("default")
}

// FuzzyResult is the outcome of matching a pattern against one
// candidate string.
type FuzzyResult struct {
	// Score is fzf's match quality; zero means no match. Higher is
	// better: consecutive runs and word-boundary hits score above
	// scattered character matches.
	Score int

	// Positions are the matched rune indices in the candidate, for
	// highlighting.
	Positions []int
}

// FuzzyMatch matches pattern against text using fzf's V2 algorithm,
// case-insensitively. The slab is fzf's scratch allocation arena; pass
// nil for one-off calls or share one across a filtering pass.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}

	// fzf's case-insensitive mode expects a lowercase pattern.
	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))

	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}

	matched := FuzzyResult{Score: result.Score}
	if positions != nil {
		matched.Positions = *positions
	}
	return matched
}

// NewSlab allocates a scratch arena sized for interactive filtering.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}
