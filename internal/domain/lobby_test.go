package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// readyLobby returns a lobby with n named, ready players u1..un. u1 is host.
func readyLobby(t *testing.T, n int) *Lobby {
	t.Helper()
	l := NewLobby("ROOM01", DefaultSettings(), 3, 12, epoch)
	for i := 1; i <= n; i++ {
		id := string(rune('0' + i))
		_, _, err := l.Join("u"+id, "h"+id, epoch)
		require.NoError(t, err)
		_, _, err = l.SetDisplayName("u"+id, "Player "+id)
		require.NoError(t, err)
		_, err = l.ToggleReady("u" + id)
		require.NoError(t, err)
	}
	return l
}

func TestLobby_JoinAssignsHost(t *testing.T) {
	l := NewLobby("ROOM01", DefaultSettings(), 3, 12, epoch)

	_, _, err := l.Join("alice", "h1", epoch)
	require.NoError(t, err)
	_, _, err = l.Join("bob", "h2", epoch)
	require.NoError(t, err)

	assert.Equal(t, "alice", l.Roster.HostID())
	assert.Equal(t, 2, l.Roster.Len())
}

func TestLobby_RejoinSwapsHandle(t *testing.T) {
	l := readyLobby(t, 3)

	p, prev, err := l.Join("u2", "fresh", epoch.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "h2", prev)
	assert.Equal(t, "fresh", p.Handle)
	assert.Equal(t, "Player 2", p.DisplayName)
	assert.True(t, p.Ready)
	assert.Equal(t, 3, l.Roster.Len())
}

func TestLobby_JoinRejections(t *testing.T) {
	l := NewLobby("ROOM01", DefaultSettings(), 3, 3, epoch)
	for _, id := range []string{"a", "b", "c"} {
		_, _, err := l.Join(id, "h-"+id, epoch)
		require.NoError(t, err)
	}

	_, _, err := l.Join("d", "h-d", epoch)
	assert.ErrorIs(t, err, ErrRoomFull)

	_, _, err = l.Join("  ", "h-x", epoch)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	l.MaxPlayers = 12
	l.Status = StatusStarting
	_, _, err = l.Join("d", "h-d", epoch)
	assert.ErrorIs(t, err, ErrGameStarting)

	// Existing members may still reconnect.
	_, _, err = l.Join("a", "h-a2", epoch)
	assert.NoError(t, err)
}

func TestLobby_SetDisplayName(t *testing.T) {
	l := readyLobby(t, 3)

	stored, prev, err := l.SetDisplayName("u1", "  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored)
	assert.Equal(t, "Player 1", prev)

	_, _, err = l.SetDisplayName("u2", "ALICE")
	assert.ErrorIs(t, err, ErrDisplayNameTaken)

	_, _, err = l.SetDisplayName("u2", "x")
	assert.ErrorIs(t, err, ErrDisplayNameLength)

	_, _, err = l.SetDisplayName("u2", "abcdefghijklmnopq")
	assert.ErrorIs(t, err, ErrDisplayNameLength)

	// Renaming to your own name in another case is allowed.
	_, _, err = l.SetDisplayName("u1", "alice")
	assert.NoError(t, err)

	_, _, err = l.SetDisplayName("ghost", "Ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestLobby_ToggleReadyRequiresName(t *testing.T) {
	l := NewLobby("ROOM01", DefaultSettings(), 3, 12, epoch)
	_, _, err := l.Join("a", "h", epoch)
	require.NoError(t, err)

	_, err = l.ToggleReady("a")
	assert.ErrorIs(t, err, ErrNoDisplayName)

	_, _, err = l.SetDisplayName("a", "Anna")
	require.NoError(t, err)
	p, err := l.ToggleReady("a")
	require.NoError(t, err)
	assert.True(t, p.Ready)

	p, err = l.ToggleReady("a")
	require.NoError(t, err)
	assert.False(t, p.Ready)
}

func TestLobby_UpdateSettings(t *testing.T) {
	l := readyLobby(t, 3)
	s := DefaultSettings()
	s.TotalRounds = 3

	assert.ErrorIs(t, l.UpdateSettings("u2", s), ErrNotHost)

	bad := s
	bad.VotingTimeSeconds = 5
	assert.ErrorIs(t, l.UpdateSettings("u1", bad), ErrInvalidSettings)
	assert.True(t, l.AllReady(), "rejected settings must not clear ready flags")

	require.NoError(t, l.UpdateSettings("u1", s))
	assert.Equal(t, 3, l.Settings.TotalRounds)
	assert.False(t, l.AllReady())
	for _, p := range l.Roster.Players() {
		assert.False(t, p.Ready)
	}
}

func TestLobby_Kick(t *testing.T) {
	l := readyLobby(t, 3)

	_, err := l.Kick("u2", "u3")
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = l.Kick("u1", "u1")
	assert.ErrorIs(t, err, ErrCannotKickSelf)

	_, err = l.Kick("u1", "nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	removed, err := l.Kick("u1", "u3")
	require.NoError(t, err)
	assert.Equal(t, "u3", removed.ID)
	assert.Equal(t, 2, l.Roster.Len())
}

func TestLobby_CheckStart(t *testing.T) {
	l := readyLobby(t, 2)
	assert.ErrorIs(t, l.CheckStart("u1"), ErrNotEnoughPlayers)

	_, _, err := l.Join("u3", "h3", epoch)
	require.NoError(t, err)
	_, _, err = l.SetDisplayName("u3", "Player 3")
	require.NoError(t, err)

	assert.ErrorIs(t, l.CheckStart("u2"), ErrNotHost)
	assert.ErrorIs(t, l.CheckStart("u1"), ErrPlayersNotReady)

	_, err = l.ToggleReady("u3")
	require.NoError(t, err)
	assert.NoError(t, l.CheckStart("u1"))
	assert.True(t, l.State().CanStart)
}

func TestLobby_HostTransferOnLeave(t *testing.T) {
	l := readyLobby(t, 3)

	_, hostChanged := l.Roster.Remove("u1")
	assert.True(t, hostChanged)
	assert.Equal(t, "u2", l.Roster.HostID())

	state := l.State()
	assert.Equal(t, "u2", state.HostID)
	require.Len(t, state.Players, 2)
	assert.True(t, state.Players[0].IsHost)
}

func TestRoster_IdleSince(t *testing.T) {
	r := NewRoster()
	r.Attach("a", "h1", epoch)
	r.Attach("b", "h2", epoch)

	_, idle := r.IdleSince()
	assert.False(t, idle)

	r.Detach("a", epoch.Add(time.Minute))
	_, idle = r.IdleSince()
	assert.False(t, idle)

	r.Detach("b", epoch.Add(2*time.Minute))
	since, idle := r.IdleSince()
	assert.True(t, idle)
	assert.Equal(t, epoch.Add(2*time.Minute), since)
	assert.Equal(t, 0, r.ConnectedCount())
}
