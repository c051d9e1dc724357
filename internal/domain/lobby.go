package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Display name bounds, in runes
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 16
)

// Lobby is the pre-game state of a room: roster, ready flags and settings.
type Lobby struct {
	Code       string
	Roster     *Roster
	Settings   Settings
	Status     RoomStatus
	MinPlayers int
	MaxPlayers int
	CreatedAt  time.Time
}

// NewLobby creates an empty lobby
func NewLobby(code string, settings Settings, minPlayers, maxPlayers int, now time.Time) *Lobby {
	return &Lobby{
		Code:       code,
		Roster:     NewRoster(),
		Settings:   settings.Clone(),
		Status:     StatusWaiting,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		CreatedAt:  now,
	}
}

// LobbyFromGame turns a finished game back into a lobby with the same roster
// and settings. Ready flags start cleared.
func LobbyFromGame(g *Game, minPlayers, maxPlayers int, now time.Time) *Lobby {
	g.Roster.ResetReady()
	return &Lobby{
		Code:       g.Code,
		Roster:     g.Roster,
		Settings:   g.Settings.Clone(),
		Status:     StatusWaiting,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		CreatedAt:  now,
	}
}

// Join adds a player or re-attaches an existing one. Rejoining keeps the
// name and ready flag and only swaps the connection handle.
func (l *Lobby) Join(userID, handle string, now time.Time) (player *Player, previousHandle string, err error) {
	if strings.TrimSpace(userID) == "" {
		return nil, "", ErrInvalidUserID
	}

	if _, ok := l.Roster.Get(userID); !ok {
		if l.Status == StatusStarting {
			return nil, "", ErrGameStarting
		}
		if l.MaxPlayers > 0 && l.Roster.Len() >= l.MaxPlayers {
			return nil, "", ErrRoomFull
		}
	}

	player, previousHandle, _ = l.Roster.Attach(userID, handle, now)
	return player, previousHandle, nil
}

// SetDisplayName validates and assigns a display name. It returns the name
// as stored (trimmed) and the previous one.
func (l *Lobby) SetDisplayName(userID, name string) (stored, previous string, err error) {
	player, ok := l.Roster.Get(userID)
	if !ok {
		return "", "", ErrPlayerNotFound
	}

	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinDisplayNameLength || n > MaxDisplayNameLength {
		return "", "", ErrDisplayNameLength
	}
	if l.Roster.NameTaken(name, userID) {
		return "", "", ErrDisplayNameTaken
	}

	previous = player.DisplayName
	player.DisplayName = name
	return name, previous, nil
}

// ToggleReady flips the player's ready flag. Players without a display name
// cannot toggle.
func (l *Lobby) ToggleReady(userID string) (*Player, error) {
	player, ok := l.Roster.Get(userID)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !player.HasName() {
		return nil, ErrNoDisplayName
	}
	if l.Status == StatusStarting {
		return nil, ErrGameStarting
	}
	player.Ready = !player.Ready
	return player, nil
}

// AllReady reports whether the roster is large enough and everyone is ready
func (l *Lobby) AllReady() bool {
	if l.Roster.Len() < l.MinPlayers {
		return false
	}
	for _, p := range l.Roster.Players() {
		if !p.Ready || !p.HasName() {
			return false
		}
	}
	return true
}

// UpdateSettings replaces the settings (host only) and clears every ready
// flag so players consent to the new settings.
func (l *Lobby) UpdateSettings(requesterID string, settings Settings) error {
	if !l.Roster.IsHost(requesterID) {
		return ErrNotHost
	}
	if l.Status == StatusStarting {
		return ErrGameStarting
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	l.Settings = settings.Clone()
	l.Roster.ResetReady()
	return nil
}

// Kick removes target from the roster (host only)
func (l *Lobby) Kick(requesterID, targetID string) (*Player, error) {
	if !l.Roster.IsHost(requesterID) {
		return nil, ErrNotHost
	}
	if requesterID == targetID {
		return nil, ErrCannotKickSelf
	}
	removed, _ := l.Roster.Remove(targetID)
	if removed == nil {
		return nil, ErrPlayerNotFound
	}
	return removed, nil
}

// CheckStart validates the start preconditions for requesterID
func (l *Lobby) CheckStart(requesterID string) error {
	if !l.Roster.IsHost(requesterID) {
		return ErrNotHost
	}
	return l.checkRoster()
}

// ConfirmStart re-checks the roster right before the game is built; players
// may have left during the pacing delay.
func (l *Lobby) ConfirmStart() error {
	return l.checkRoster()
}

func (l *Lobby) checkRoster() error {
	if l.Roster.Len() < l.MinPlayers {
		return ErrNotEnoughPlayers
	}
	if !l.AllReady() {
		return ErrPlayersNotReady
	}
	return nil
}

// LobbyPlayer is the public view of a lobby member
type LobbyPlayer struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Ready       bool   `json:"ready"`
	IsHost      bool   `json:"isHost"`
	Connected   bool   `json:"connected"`
}

// LobbyState is the lobby_state broadcast payload
type LobbyState struct {
	RoomCode   string        `json:"roomCode"`
	Status     RoomStatus    `json:"status"`
	HostID     string        `json:"hostId"`
	Settings   Settings      `json:"settings"`
	Players    []LobbyPlayer `json:"players"`
	MinPlayers int           `json:"minPlayers"`
	CanStart   bool          `json:"canStart"`
}

// State returns the current lobby state for broadcasting
func (l *Lobby) State() LobbyState {
	players := make([]LobbyPlayer, 0, l.Roster.Len())
	for _, p := range l.Roster.Players() {
		players = append(players, LobbyPlayer{
			UserID:      p.ID,
			DisplayName: p.DisplayName,
			Ready:       p.Ready,
			IsHost:      l.Roster.IsHost(p.ID),
			Connected:   p.IsConnected(),
		})
	}

	return LobbyState{
		RoomCode:   l.Code,
		Status:     l.Status,
		HostID:     l.Roster.HostID(),
		Settings:   l.Settings.Clone(),
		Players:    players,
		MinPlayers: l.MinPlayers,
		CanStart:   l.Status == StatusWaiting && l.AllReady(),
	}
}
