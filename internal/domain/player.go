package domain

import (
	"strings"
	"time"
)

// Player is a room-scoped participant. ID is the stable external user id;
// Handle is the transient connection handle, empty while disconnected.
type Player struct {
	ID             string
	DisplayName    string
	Handle         string
	Ready          bool
	JoinedAt       time.Time
	DisconnectedAt time.Time
}

// IsConnected returns true if the player currently has a connection
func (p *Player) IsConnected() bool {
	return p.Handle != ""
}

// HasName reports whether the player picked a display name.
func (p *Player) HasName() bool {
	return p.DisplayName != ""
}

// Roster is the ordered membership of a room plus its host. Order is join
// order and is what host transfer follows.
type Roster struct {
	players []*Player
	hostID  string
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{players: make([]*Player, 0)}
}

// Attach adds a new player or re-attaches an existing one to a new
// connection handle. It returns the previous handle when the player was
// already present.
func (r *Roster) Attach(userID, handle string, now time.Time) (player *Player, previousHandle string, created bool) {
	if p, ok := r.Get(userID); ok {
		previousHandle = p.Handle
		p.Handle = handle
		p.DisconnectedAt = time.Time{}
		return p, previousHandle, false
	}

	p := &Player{ID: userID, Handle: handle, JoinedAt: now}
	r.players = append(r.players, p)
	if r.hostID == "" {
		r.hostID = userID
	}
	return p, "", true
}

// Detach clears the player's connection handle, keeping the record.
func (r *Roster) Detach(userID string, now time.Time) (*Player, bool) {
	p, ok := r.Get(userID)
	if !ok {
		return nil, false
	}
	p.Handle = ""
	p.DisconnectedAt = now
	return p, true
}

// Remove deletes a player. When the host leaves, hosting passes to the next
// remaining player in roster order.
func (r *Roster) Remove(userID string) (removed *Player, hostChanged bool) {
	idx := r.index(userID)
	if idx < 0 {
		return nil, false
	}
	removed = r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if r.hostID == userID {
		r.hostID = ""
		if len(r.players) > 0 {
			r.hostID = r.players[0].ID
			hostChanged = true
		}
	}
	return removed, hostChanged
}

// Get returns a player by ID
func (r *Roster) Get(userID string) (*Player, bool) {
	idx := r.index(userID)
	if idx < 0 {
		return nil, false
	}
	return r.players[idx], true
}

// Players returns the players in roster order
func (r *Roster) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// IDs returns the player IDs in roster order
func (r *Roster) IDs() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *Roster) Len() int {
	return len(r.players)
}

func (r *Roster) HostID() string {
	return r.hostID
}

// IsHost checks if the given player is the host
func (r *Roster) IsHost(userID string) bool {
	return userID != "" && r.hostID == userID
}

// ConnectedCount returns the number of connected players
func (r *Roster) ConnectedCount() int {
	count := 0
	for _, p := range r.players {
		if p.IsConnected() {
			count++
		}
	}
	return count
}

// NameTaken reports whether a player other than exceptID holds name,
// compared case-insensitively. Disconnected members still hold their name so
// it is theirs when they rejoin.
func (r *Roster) NameTaken(name, exceptID string) bool {
	for _, p := range r.players {
		if p.ID != exceptID && strings.EqualFold(p.DisplayName, name) {
			return true
		}
	}
	return false
}

// IdleSince returns the latest disconnect time when nobody is connected.
// ok is false while at least one player is connected.
func (r *Roster) IdleSince() (since time.Time, ok bool) {
	for _, p := range r.players {
		if p.IsConnected() {
			return time.Time{}, false
		}
		if p.DisconnectedAt.After(since) {
			since = p.DisconnectedAt
		}
	}
	return since, true
}

// ResetReady clears every ready flag.
func (r *Roster) ResetReady() {
	for _, p := range r.players {
		p.Ready = false
	}
}

func (r *Roster) index(userID string) int {
	for i, p := range r.players {
		if p.ID == userID {
			return i
		}
	}
	return -1
}
