package domain

import "time"

// RoundResult is the snapshot taken once per round when votes close. It is
// never mutated after ScoreRound returns it.
type RoundResult struct {
	Round          int               `json:"round"`
	ImposterID     string            `json:"imposterId"`
	Pair           WordPair          `json:"wordPair"`
	Votes          map[string]string `json:"votes"`     // voterID -> targetID
	Responses      map[string]string `json:"responses"` // userID -> text
	Tally          []VoteTally       `json:"tally"`
	Deltas         map[string]int    `json:"deltas"`
	ImposterCaught bool              `json:"imposterCaught"`
	PenaltyApplied bool              `json:"penaltyApplied"`
	ResolvedAt     time.Time         `json:"resolvedAt"`
}

// Winner returns the side that won the round
func (r *RoundResult) Winner() Role {
	if r.ImposterCaught {
		return RoleAgent
	}
	return RoleImposter
}
