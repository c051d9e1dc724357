package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pickLast always chooses the last roster entry as imposter
func pickLast(n int) int { return n - 1 }

func newTestGame(t *testing.T, rounds int) *Game {
	t.Helper()
	l := readyLobby(t, 4)
	s := l.Settings
	s.TotalRounds = rounds
	return NewGame(l.Code, l.Roster, s, CatchPlurality, epoch)
}

func TestNewGame(t *testing.T) {
	g := newTestGame(t, 2)

	assert.Equal(t, PhaseIdle, g.Phase)
	assert.Equal(t, StatusPlaying, g.Status())
	assert.Equal(t, map[string]int{"u1": 0, "u2": 0, "u3": 0, "u4": 0}, g.Scores)
	for _, p := range g.Roster.Players() {
		assert.False(t, p.Ready)
	}
}

func TestGame_FullRound(t *testing.T) {
	g := newTestGame(t, 2)

	require.NoError(t, g.StartRound(pickLast, testPair))
	assert.Equal(t, PhaseRoundStart, g.Phase)
	assert.Equal(t, 1, g.CurrentRound)
	assert.Equal(t, "u4", g.ImposterID)
	assert.Equal(t, RoleImposter, g.RoleOf("u4"))
	assert.Equal(t, RoleAgent, g.RoleOf("u1"))
	assert.Equal(t, Role(""), g.RoleOf("stranger"))

	_, err := g.SubmitResponse("u1", "early")
	assert.ErrorIs(t, err, ErrPhaseClosed)

	require.NoError(t, g.OpenResponses())
	for _, id := range []string{"u1", "u2", "u3"} {
		advance, err := g.SubmitResponse(id, "hot drink")
		require.NoError(t, err)
		assert.False(t, advance)
	}
	advance, err := g.SubmitResponse("u4", "leaves")
	require.NoError(t, err)
	assert.True(t, advance)

	// Overwrites are accepted but do not signal completion twice.
	advance, err = g.SubmitResponse("u4", "green leaves")
	require.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t, "green leaves", g.Responses["u4"])

	require.NoError(t, g.OpenVoting())
	_, err = g.SubmitResponse("u1", "late")
	assert.ErrorIs(t, err, ErrPhaseClosed)

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := g.SubmitVote(id, "u4")
		require.NoError(t, err)
	}
	advance, err = g.SubmitVote("u4", "u1")
	require.NoError(t, err)
	assert.True(t, advance)

	res, err := g.Resolve(epoch)
	require.NoError(t, err)
	assert.Equal(t, PhaseResult, g.Phase)
	assert.True(t, res.ImposterCaught)
	assert.Same(t, res, g.LastResult)
	assert.Equal(t, CorrectVotePoints+TeamCatchBonus, g.Scores["u1"])
	assert.Equal(t, 0, g.Scores["u4"])
	assert.True(t, g.HasNextRound())

	require.NoError(t, g.StartRound(pickLast, WordPair{Main: "sun", Imposter: "moon"}))
	assert.Equal(t, 2, g.CurrentRound)
	assert.Empty(t, g.Responses)
	assert.Empty(t, g.Votes)
	assert.Len(t, g.UsedPairs, 2)
}

func TestGame_SubmitResponseValidation(t *testing.T) {
	g := newTestGame(t, 1)
	require.NoError(t, g.StartRound(pickLast, testPair))
	require.NoError(t, g.OpenResponses())

	_, err := g.SubmitResponse("u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	long := make([]rune, MaxResponseLength+1)
	for i := range long {
		long[i] = 'é'
	}
	_, err = g.SubmitResponse("u1", string(long))
	assert.ErrorIs(t, err, ErrResponseTooLong)

	_, err = g.SubmitResponse("ghost", "hello")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = g.SubmitResponse("u1", "  trimmed  ")
	require.NoError(t, err)
	assert.Equal(t, "trimmed", g.Responses["u1"])
}

func TestGame_SubmitVoteValidation(t *testing.T) {
	g := newTestGame(t, 1)
	require.NoError(t, g.StartRound(pickLast, testPair))
	require.NoError(t, g.OpenResponses())
	require.NoError(t, g.OpenVoting())

	_, err := g.SubmitVote("u1", "u1")
	assert.ErrorIs(t, err, ErrCannotVoteSelf)

	_, err = g.SubmitVote("u1", "ghost")
	assert.ErrorIs(t, err, ErrInvalidVoteTarget)

	_, err = g.SubmitVote("ghost", "u1")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = g.SubmitVote("u1", "u2")
	require.NoError(t, err)
	_, err = g.SubmitVote("u1", "u3")
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, "u2", g.Votes["u1"])
}

func TestGame_InvalidTransitions(t *testing.T) {
	g := newTestGame(t, 1)

	assert.ErrorIs(t, g.OpenVoting(), ErrInvalidTransition)
	_, err := g.Resolve(epoch)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, g.Finish(), ErrInvalidTransition)
	assert.Equal(t, PhaseIdle, g.Phase)
}

func TestGame_FinishAndAbort(t *testing.T) {
	g := newTestGame(t, 1)
	require.NoError(t, g.StartRound(pickLast, testPair))
	require.NoError(t, g.OpenResponses())
	g.Deadline = epoch.Add(time.Minute)
	require.NoError(t, g.OpenVoting())
	_, err := g.Resolve(epoch)
	require.NoError(t, err)

	assert.False(t, g.HasNextRound())
	require.NoError(t, g.Finish())
	assert.Equal(t, StatusEnded, g.Status())
	assert.True(t, g.Deadline.IsZero())
	assert.ErrorIs(t, g.Abort(), ErrInvalidTransition)

	g2 := newTestGame(t, 3)
	require.NoError(t, g2.StartRound(pickLast, testPair))
	require.NoError(t, g2.OpenResponses())
	require.NoError(t, g2.Abort())
	assert.Equal(t, PhaseEnded, g2.Phase)
}

func TestGame_LeaveCompletesPhase(t *testing.T) {
	g := newTestGame(t, 1)
	require.NoError(t, g.StartRound(pickLast, testPair))
	require.NoError(t, g.OpenResponses())

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := g.SubmitResponse(id, "something")
		require.NoError(t, err)
	}

	g.RemovePlayer("u4")
	assert.True(t, g.CheckEarlyExit())
	assert.False(t, g.CheckEarlyExit())
}

func TestGame_VoteForDepartedImposter(t *testing.T) {
	g := newTestGame(t, 1)
	require.NoError(t, g.StartRound(pickLast, testPair))
	require.NoError(t, g.OpenResponses())
	require.NoError(t, g.OpenVoting())
	require.Equal(t, "u4", g.ImposterID)

	g.RemovePlayer("u4")
	g.RemovePlayer("u3")

	// Departed agents are no longer candidates.
	_, err := g.SubmitVote("u1", "u3")
	assert.ErrorIs(t, err, ErrInvalidVoteTarget)

	advance, err := g.SubmitVote("u1", "u4")
	require.NoError(t, err)
	assert.False(t, advance)
	advance, err = g.SubmitVote("u2", "u4")
	require.NoError(t, err)
	assert.True(t, advance)

	res, err := g.Resolve(epoch)
	require.NoError(t, err)
	assert.True(t, res.ImposterCaught)
	require.Len(t, res.Tally, 1)
	assert.Equal(t, VoteTally{TargetID: "u4", VoteCount: 2, VotedBy: []string{"u1", "u2"}, IsImposter: true}, res.Tally[0])
	assert.Equal(t, CorrectVotePoints+TeamCatchBonus, g.Scores["u1"])
	assert.Equal(t, CorrectVotePoints+TeamCatchBonus, g.Scores["u2"])
	assert.NotContains(t, res.Deltas, "u4")
}

func TestGame_NextRoundPicksFromCurrentRoster(t *testing.T) {
	g := newTestGame(t, 2)
	require.NoError(t, g.StartRound(pickLast, testPair))
	require.NoError(t, g.OpenResponses())
	require.NoError(t, g.OpenVoting())
	_, err := g.Resolve(epoch)
	require.NoError(t, err)

	g.RemovePlayer("u2")

	var sizes []int
	pick := func(n int) int {
		sizes = append(sizes, n)
		return 1
	}
	require.NoError(t, g.StartRound(pick, WordPair{Main: "sun", Imposter: "moon"}))
	assert.Equal(t, []int{3}, sizes)
	assert.Equal(t, "u3", g.ImposterID)
	assert.Contains(t, g.Roster.IDs(), g.ImposterID)
}

func TestPhase_Table(t *testing.T) {
	next, ok := PhaseResult.Next(TriggerNextRound)
	assert.True(t, ok)
	assert.Equal(t, PhaseRoundStart, next)

	_, ok = PhaseEnded.Next(TriggerAbort)
	assert.False(t, ok)

	next, ok = PhaseVoting.Next(TriggerVotesClosed)
	assert.True(t, ok)
	assert.Equal(t, PhaseResult, next)
	_, ok = PhaseVoting.Next(TriggerResponsesClosed)
	assert.False(t, ok)

	assert.True(t, PhaseResponse.Accepts(ActionSubmitResponse))
	assert.False(t, PhaseResponse.Accepts(ActionSubmitVote))
	assert.True(t, PhaseVoting.Accepts(ActionSubmitVote))
	assert.False(t, PhaseResult.Accepts(ActionSubmitVote))
}
