package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxResponseLength caps a response, in runes
const MaxResponseLength = 120

// Game is the per-room game session. It is not safe for concurrent use; the
// owning room serializes every call.
type Game struct {
	Code         string
	Roster       *Roster
	Settings     Settings
	Phase        Phase
	CurrentRound int
	TotalRounds  int
	ImposterID   string
	Pair         WordPair
	Responses    map[string]string // userID -> text
	Votes        map[string]string // voterID -> targetID
	Scores       map[string]int
	Deadline     time.Time
	LastResult   *RoundResult
	UsedPairs    []WordPair
	StartedAt    time.Time

	rule      CatchRule
	earlyExit bool
}

// NewGame builds a game from the lobby roster and settings. Scores start at
// zero for every member.
func NewGame(code string, roster *Roster, settings Settings, rule CatchRule, now time.Time) *Game {
	scores := make(map[string]int, roster.Len())
	for _, id := range roster.IDs() {
		scores[id] = 0
	}
	for _, p := range roster.Players() {
		p.Ready = false
	}

	return &Game{
		Code:        code,
		Roster:      roster,
		Settings:    settings.Clone(),
		Phase:       PhaseIdle,
		TotalRounds: settings.TotalRounds,
		Responses:   make(map[string]string),
		Votes:       make(map[string]string),
		Scores:      scores,
		UsedPairs:   make([]WordPair, 0, settings.TotalRounds),
		StartedAt:   now,
		rule:        rule,
	}
}

// Status maps the phase to the room status
func (g *Game) Status() RoomStatus {
	if g.Phase == PhaseEnded {
		return StatusEnded
	}
	return StatusPlaying
}

// RoleOf returns the role of userID in the current round, or "" when no
// round is running or the user is not in the game.
func (g *Game) RoleOf(userID string) Role {
	if g.ImposterID == "" {
		return RoleNone
	}
	if _, ok := g.Roster.Get(userID); !ok {
		return RoleNone
	}
	if userID == g.ImposterID {
		return RoleImposter
	}
	return RoleAgent
}

// StartRound enters round_start: clears the round maps, picks the imposter
// uniformly from the current roster using pick (n -> [0,n)), and stores the
// word pair.
func (g *Game) StartRound(pick func(n int) int, pair WordPair) error {
	if g.Roster.Len() == 0 {
		return ErrNotEnoughPlayers
	}
	trigger := TriggerNextRound
	if g.Phase == PhaseIdle {
		trigger = TriggerStart
	}
	if err := g.fire(trigger); err != nil {
		return err
	}

	ids := g.Roster.IDs()
	g.CurrentRound++
	g.Responses = make(map[string]string)
	g.Votes = make(map[string]string)
	g.ImposterID = ids[pick(len(ids))]
	g.Pair = pair
	g.UsedPairs = append(g.UsedPairs, pair)

	return nil
}

// OpenResponses moves round_start -> response
func (g *Game) OpenResponses() error {
	if err := g.fire(TriggerAnnounced); err != nil {
		return err
	}
	g.Responses = make(map[string]string)
	return nil
}

// SubmitResponse records or overwrites the player's response. advance is true
// exactly once per phase: on the submission that completes the set.
func (g *Game) SubmitResponse(userID, text string) (advance bool, err error) {
	if !g.Phase.Accepts(ActionSubmitResponse) {
		return false, ErrPhaseClosed
	}
	if _, ok := g.Roster.Get(userID); !ok {
		return false, ErrPlayerNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, ErrEmptyResponse
	}
	if utf8.RuneCountInString(text) > MaxResponseLength {
		return false, ErrResponseTooLong
	}

	g.Responses[userID] = text
	return g.CheckEarlyExit(), nil
}

// OpenVoting moves response -> voting
func (g *Game) OpenVoting() error {
	if err := g.fire(TriggerResponsesClosed); err != nil {
		return err
	}
	g.Votes = make(map[string]string)
	return nil
}

// SubmitVote records the voter's ballot. The first ballot is final. The
// round's imposter stays a valid target after leaving so agents can still
// catch them.
func (g *Game) SubmitVote(voterID, targetID string) (advance bool, err error) {
	if !g.Phase.Accepts(ActionSubmitVote) {
		return false, ErrPhaseClosed
	}
	if _, ok := g.Roster.Get(voterID); !ok {
		return false, ErrPlayerNotFound
	}
	if _, voted := g.Votes[voterID]; voted {
		return false, ErrAlreadyVoted
	}
	if voterID == targetID {
		return false, ErrCannotVoteSelf
	}
	if _, ok := g.Roster.Get(targetID); !ok && targetID != g.ImposterID {
		return false, ErrInvalidVoteTarget
	}

	g.Votes[voterID] = targetID
	return g.CheckEarlyExit(), nil
}

// CheckEarlyExit reports whether the open phase just became complete. It
// returns true at most once per phase.
func (g *Game) CheckEarlyExit() bool {
	if g.earlyExit {
		return false
	}
	var complete bool
	switch g.Phase {
	case PhaseResponse:
		complete = g.AllResponded()
	case PhaseVoting:
		complete = g.AllVoted()
	}
	if complete {
		g.earlyExit = true
	}
	return complete
}

// AllResponded checks if every current player has a response
func (g *Game) AllResponded() bool {
	if g.Roster.Len() == 0 {
		return false
	}
	for _, id := range g.Roster.IDs() {
		if _, ok := g.Responses[id]; !ok {
			return false
		}
	}
	return true
}

// AllVoted checks if every current player has voted
func (g *Game) AllVoted() bool {
	if g.Roster.Len() == 0 {
		return false
	}
	for _, id := range g.Roster.IDs() {
		if _, ok := g.Votes[id]; !ok {
			return false
		}
	}
	return true
}

// Resolve moves voting -> result, scores the round and accumulates deltas.
func (g *Game) Resolve(now time.Time) (*RoundResult, error) {
	if err := g.fire(TriggerVotesClosed); err != nil {
		return nil, err
	}

	result := ScoreRound(RoundInput{
		Round:      g.CurrentRound,
		Players:    g.Roster.IDs(),
		ImposterID: g.ImposterID,
		Pair:       g.Pair,
		Responses:  g.Responses,
		Votes:      g.Votes,
		Rule:       g.rule,
	})
	result.ResolvedAt = now

	for id, delta := range result.Deltas {
		g.Scores[id] += delta
	}
	g.LastResult = result

	return result, nil
}

// HasNextRound reports whether another round follows the current one
func (g *Game) HasNextRound() bool {
	return g.CurrentRound < g.TotalRounds
}

// Finish moves result -> ended
func (g *Game) Finish() error {
	if err := g.fire(TriggerFinish); err != nil {
		return err
	}
	g.Deadline = time.Time{}
	return nil
}

// Abort ends the game from any live phase
func (g *Game) Abort() error {
	if err := g.fire(TriggerAbort); err != nil {
		return err
	}
	g.Deadline = time.Time{}
	return nil
}

// RemovePlayer drops a player mid-game. Ballots already cast stay in the
// round maps.
func (g *Game) RemovePlayer(userID string) (removed *Player, hostChanged bool) {
	return g.Roster.Remove(userID)
}

func (g *Game) fire(t Trigger) error {
	next, ok := g.Phase.Next(t)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, t, g.Phase)
	}
	g.Phase = next
	g.earlyExit = false
	return nil
}
