package domain

import "sort"

// VoteTally is the per-target vote count shown with a round result
type VoteTally struct {
	TargetID   string   `json:"targetId"`
	VoteCount  int      `json:"voteCount"`
	VotedBy    []string `json:"votedBy"` // Voter IDs, sorted
	IsImposter bool     `json:"isImposter"`
}

// TallyVotes counts votes per target. Targets are ordered by count, highest
// first, then by ID so the output is deterministic.
func TallyVotes(votes map[string]string, imposterID string) []VoteTally {
	byTarget := make(map[string]*VoteTally)
	for voterID, targetID := range votes {
		t, ok := byTarget[targetID]
		if !ok {
			t = &VoteTally{TargetID: targetID, IsImposter: targetID == imposterID}
			byTarget[targetID] = t
		}
		t.VoteCount++
		t.VotedBy = append(t.VotedBy, voterID)
	}

	tallies := make([]VoteTally, 0, len(byTarget))
	for _, t := range byTarget {
		sort.Strings(t.VotedBy)
		tallies = append(tallies, *t)
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].VoteCount != tallies[j].VoteCount {
			return tallies[i].VoteCount > tallies[j].VoteCount
		}
		return tallies[i].TargetID < tallies[j].TargetID
	})
	return tallies
}

// Plurality returns the set of targets tied for the highest vote count.
func Plurality(tallies []VoteTally) []string {
	if len(tallies) == 0 {
		return nil
	}
	top := tallies[0].VoteCount
	leaders := make([]string, 0, 1)
	for _, t := range tallies {
		if t.VoteCount != top {
			break
		}
		leaders = append(leaders, t.TargetID)
	}
	return leaders
}
