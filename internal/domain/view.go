package domain

// PlayerSummary is the public view of a game participant. It exposes only
// whether the player has acted, never what they submitted.
type PlayerSummary struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	IsHost       bool   `json:"isHost"`
	Connected    bool   `json:"connected"`
	HasSubmitted bool   `json:"hasSubmitted"`
	HasVoted     bool   `json:"hasVoted"`
}

// PlayerView is the game_state_update payload: the part of a game one viewer
// is allowed to see. It is built only by Project.
type PlayerView struct {
	RoomCode      string            `json:"roomCode"`
	Status        RoomStatus        `json:"status"`
	Phase         Phase             `json:"phase"`
	PhaseDeadline int64             `json:"phaseDeadline"` // Unix milliseconds, 0 when no timer runs
	CurrentRound  int               `json:"currentRound"`
	TotalRounds   int               `json:"totalRounds"`
	HostID        string            `json:"hostId"`
	Players       []PlayerSummary   `json:"players"`
	Scores        map[string]int    `json:"scores"`
	Responses     map[string]string `json:"responses"`
	LastResult    *RoundResult      `json:"lastResult,omitempty"`
	Role          Role              `json:"role,omitempty"`
	Word          string            `json:"word,omitempty"`
	ForbiddenWord string            `json:"forbiddenWord,omitempty"`
}

// Project maps the game and a viewer to what that viewer may see. It does not
// modify g and returns equal views for equal inputs.
func Project(g *Game, viewerID string) PlayerView {
	view := PlayerView{
		RoomCode:     g.Code,
		Status:       g.Status(),
		Phase:        g.Phase,
		CurrentRound: g.CurrentRound,
		TotalRounds:  g.TotalRounds,
		HostID:       g.Roster.HostID(),
		Players:      make([]PlayerSummary, 0, g.Roster.Len()),
		Scores:       make(map[string]int, len(g.Scores)),
		Responses:    map[string]string{},
		LastResult:   g.LastResult,
	}

	if !g.Deadline.IsZero() {
		view.PhaseDeadline = g.Deadline.UnixMilli()
	}

	for _, p := range g.Roster.Players() {
		_, submitted := g.Responses[p.ID]
		_, voted := g.Votes[p.ID]
		view.Players = append(view.Players, PlayerSummary{
			UserID:       p.ID,
			DisplayName:  p.DisplayName,
			IsHost:       g.Roster.IsHost(p.ID),
			Connected:    p.IsConnected(),
			HasSubmitted: submitted,
			HasVoted:     voted,
		})
	}

	for id, score := range g.Scores {
		view.Scores[id] = score
	}

	if responsesVisible(g.Phase) {
		for id, text := range g.Responses {
			view.Responses[id] = text
		}
	}

	if g.Status() == StatusPlaying {
		view.Role = g.RoleOf(viewerID)
		view.Word = view.Role.Word(g.Pair)
		if view.Role == RoleImposter {
			view.ForbiddenWord = g.Pair.Main
		}
	}

	return view
}

// Responses stay hidden from everyone until submissions close.
func responsesVisible(p Phase) bool {
	switch p {
	case PhaseVoting, PhaseResult, PhaseEnded:
		return true
	}
	return false
}
