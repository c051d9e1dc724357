package domain

import (
	"fmt"
	"strings"
)

// Score values
const (
	ImposterSurvivalPoints = 150
	CorrectVotePoints      = 100
	TeamCatchBonus         = 50
)

// CatchRule decides from the vote tally whether the imposter was caught.
type CatchRule string

const (
	// CatchPlurality: the imposter must be the single top-voted target.
	// Any tie at the top means not caught.
	CatchPlurality CatchRule = "plurality"
	// CatchMajority: more than half of the cast votes name the imposter.
	CatchMajority CatchRule = "majority"
)

// ParseCatchRule parses a configured rule name
func ParseCatchRule(s string) (CatchRule, error) {
	switch CatchRule(strings.ToLower(strings.TrimSpace(s))) {
	case CatchPlurality, "":
		return CatchPlurality, nil
	case CatchMajority:
		return CatchMajority, nil
	}
	return "", fmt.Errorf("unknown catch rule %q", s)
}

// Caught applies the rule to a tally
func (r CatchRule) Caught(tallies []VoteTally, imposterID string, votesCast int) bool {
	switch r {
	case CatchMajority:
		for _, t := range tallies {
			if t.TargetID == imposterID {
				return t.VoteCount*2 > votesCast
			}
		}
		return false
	default:
		leaders := Plurality(tallies)
		return len(leaders) == 1 && leaders[0] == imposterID
	}
}

// RoundInput is everything scoring needs from one round
type RoundInput struct {
	Round      int
	Players    []string // Current roster
	ImposterID string
	Pair       WordPair
	Responses  map[string]string
	Votes      map[string]string
	Rule       CatchRule
}

// ScoreRound resolves a round into an immutable RoundResult with per-player
// deltas. It reads only its input.
func ScoreRound(in RoundInput) *RoundResult {
	tallies := TallyVotes(in.Votes, in.ImposterID)
	caught := in.Rule.Caught(tallies, in.ImposterID, len(in.Votes))

	deltas := make(map[string]int, len(in.Players))
	penalty := false

	for _, id := range in.Players {
		if id == in.ImposterID {
			delta := 0
			if !caught {
				delta = ImposterSurvivalPoints
			}
			if containsWord(in.Responses[id], in.Pair.Main) {
				delta /= 2
				penalty = true
			}
			deltas[id] = delta
			continue
		}

		delta := 0
		if in.Votes[id] == in.ImposterID {
			delta += CorrectVotePoints
		}
		if caught {
			delta += TeamCatchBonus
		}
		deltas[id] = delta
	}

	return &RoundResult{
		Round:          in.Round,
		ImposterID:     in.ImposterID,
		Pair:           in.Pair,
		Votes:          copyMap(in.Votes),
		Responses:      copyMap(in.Responses),
		Tally:          tallies,
		Deltas:         deltas,
		ImposterCaught: caught,
		PenaltyApplied: penalty,
	}
}

func containsWord(text, word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(word))
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
