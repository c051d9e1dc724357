package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPair = WordPair{Main: "coffee", Imposter: "tea"}

func roundInput(votes map[string]string, responses map[string]string) RoundInput {
	return RoundInput{
		Round:      1,
		Players:    []string{"a", "b", "c", "d"},
		ImposterID: "d",
		Pair:       testPair,
		Responses:  responses,
		Votes:      votes,
		Rule:       CatchPlurality,
	}
}

func TestScoreRound_ImposterCaught(t *testing.T) {
	res := ScoreRound(roundInput(map[string]string{
		"a": "d",
		"b": "d",
		"c": "a",
		"d": "a",
	}, nil))

	// d and a tie at two votes each: plurality needs a single leader.
	assert.False(t, res.ImposterCaught)

	res = ScoreRound(roundInput(map[string]string{
		"a": "d",
		"b": "d",
		"c": "d",
		"d": "a",
	}, nil))

	require.True(t, res.ImposterCaught)
	assert.Equal(t, map[string]int{
		"a": CorrectVotePoints + TeamCatchBonus,
		"b": CorrectVotePoints + TeamCatchBonus,
		"c": CorrectVotePoints + TeamCatchBonus,
		"d": 0,
	}, res.Deltas)
	assert.Equal(t, RoleAgent, res.Winner())
}

func TestScoreRound_ImposterSurvives(t *testing.T) {
	res := ScoreRound(roundInput(map[string]string{
		"a": "b",
		"b": "a",
		"c": "a",
		"d": "a",
	}, nil))

	assert.False(t, res.ImposterCaught)
	assert.Equal(t, map[string]int{"a": 0, "b": 0, "c": 0, "d": ImposterSurvivalPoints}, res.Deltas)
	assert.Equal(t, RoleImposter, res.Winner())
}

func TestScoreRound_CorrectVoteWithoutCatch(t *testing.T) {
	res := ScoreRound(roundInput(map[string]string{
		"a": "d",
		"b": "c",
		"c": "b",
	}, nil))

	assert.False(t, res.ImposterCaught)
	assert.Equal(t, CorrectVotePoints, res.Deltas["a"])
	assert.Equal(t, 0, res.Deltas["b"])
	assert.Equal(t, ImposterSurvivalPoints, res.Deltas["d"])
}

func TestScoreRound_MainWordPenalty(t *testing.T) {
	res := ScoreRound(roundInput(
		map[string]string{"a": "b"},
		map[string]string{"d": "I love my morning COFFEE"},
	))

	assert.True(t, res.PenaltyApplied)
	assert.Equal(t, ImposterSurvivalPoints/2, res.Deltas["d"])
}

func TestScoreRound_PenaltyWhenCaughtStaysZero(t *testing.T) {
	res := ScoreRound(roundInput(
		map[string]string{"a": "d", "b": "d"},
		map[string]string{"d": "coffee"},
	))

	assert.True(t, res.ImposterCaught)
	assert.True(t, res.PenaltyApplied)
	assert.Equal(t, 0, res.Deltas["d"])
}

func TestScoreRound_NoVotes(t *testing.T) {
	res := ScoreRound(roundInput(map[string]string{}, map[string]string{}))

	assert.False(t, res.ImposterCaught)
	assert.Empty(t, res.Tally)
	assert.Equal(t, ImposterSurvivalPoints, res.Deltas["d"])
	assert.Len(t, res.Deltas, 4)
}

func TestScoreRound_CopiesInputs(t *testing.T) {
	votes := map[string]string{"a": "d"}
	responses := map[string]string{"a": "hot drink"}
	res := ScoreRound(roundInput(votes, responses))

	votes["b"] = "d"
	responses["a"] = "changed"

	assert.Len(t, res.Votes, 1)
	assert.Equal(t, "hot drink", res.Responses["a"])
}

func TestCatchRule_Majority(t *testing.T) {
	tallies := TallyVotes(map[string]string{"a": "d", "b": "d", "c": "a", "d": "a"}, "d")
	assert.False(t, CatchMajority.Caught(tallies, "d", 4))

	tallies = TallyVotes(map[string]string{"a": "d", "b": "d", "c": "d", "d": "a"}, "d")
	assert.True(t, CatchMajority.Caught(tallies, "d", 4))
}

func TestParseCatchRule(t *testing.T) {
	r, err := ParseCatchRule(" Majority ")
	require.NoError(t, err)
	assert.Equal(t, CatchMajority, r)

	r, err = ParseCatchRule("")
	require.NoError(t, err)
	assert.Equal(t, CatchPlurality, r)

	_, err = ParseCatchRule("unanimous")
	assert.Error(t, err)
}

func TestTallyVotes_Ordering(t *testing.T) {
	tallies := TallyVotes(map[string]string{"a": "c", "b": "c", "c": "b", "d": "a"}, "c")

	require.Len(t, tallies, 3)
	assert.Equal(t, VoteTally{TargetID: "c", VoteCount: 2, VotedBy: []string{"a", "b"}, IsImposter: true}, tallies[0])
	assert.Equal(t, "a", tallies[1].TargetID)
	assert.Equal(t, "b", tallies[2].TargetID)
	assert.Equal(t, []string{"c"}, Plurality(tallies))
}

func TestScoreRound_TopTieIncludingImposter(t *testing.T) {
	res := ScoreRound(RoundInput{
		Round:      1,
		Players:    []string{"A", "B", "C", "D", "X", "Y"},
		ImposterID: "X",
		Pair:       testPair,
		Votes:      map[string]string{"A": "X", "B": "Y", "C": "X", "D": "Y"},
		Rule:       CatchPlurality,
	})

	assert.False(t, res.ImposterCaught)
	assert.Equal(t, ImposterSurvivalPoints, res.Deltas["X"])
	assert.Equal(t, CorrectVotePoints, res.Deltas["A"])
	assert.Equal(t, 0, res.Deltas["B"])
}

func TestScoreRound_SingleLeaderCaught(t *testing.T) {
	res := ScoreRound(RoundInput{
		Round:      1,
		Players:    []string{"A", "B", "C", "X", "Y"},
		ImposterID: "X",
		Pair:       testPair,
		Votes:      map[string]string{"A": "X", "B": "X", "C": "Y"},
		Rule:       CatchPlurality,
	})

	require.True(t, res.ImposterCaught)
	assert.Equal(t, 150, res.Deltas["A"])
	assert.Equal(t, 150, res.Deltas["B"])
	assert.Equal(t, 50, res.Deltas["C"])
	assert.Equal(t, 50, res.Deltas["Y"])
	assert.Equal(t, 0, res.Deltas["X"])
}
