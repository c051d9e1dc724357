package app

import (
	"time"

	"undercover/internal/domain"
)

// Phase entry actions. Each one moves the game, arms the single phase timer
// for what comes next and pushes fresh views to every player. Timer-driven
// steps run whether or not everyone acted.

func (r *Room) startRound() {
	g := r.game
	pair := r.hub.words.Pair(g.Settings.Difficulty, g.Settings.CustomWordPairs, g.UsedPairs)
	if err := g.StartRound(r.hub.pick, pair); err != nil {
		r.abortGame(err)
		return
	}

	r.logger.Debug("round started", "round", g.CurrentRound, "imposterId", g.ImposterID)
	r.arm(r.hub.cfg.RoundAnnounceDelay, r.openResponses)
	r.broadcastGame()
}

func (r *Room) openResponses() {
	g := r.game
	if err := g.OpenResponses(); err != nil {
		r.abortGame(err)
		return
	}

	r.arm(g.Settings.ResponseTime(), r.closeResponses)
	r.broadcastGame()
}

func (r *Room) closeResponses() {
	g := r.game
	if err := g.OpenVoting(); err != nil {
		r.abortGame(err)
		return
	}

	r.arm(g.Settings.VotingTime(), r.closeVoting)
	r.broadcastGame()
}

func (r *Room) closeVoting() {
	g := r.game
	result, err := g.Resolve(r.hub.now())
	if err != nil {
		r.abortGame(err)
		return
	}

	r.logger.Info("round resolved",
		"round", result.Round,
		"winner", result.Winner(),
		"imposterCaught", result.ImposterCaught,
		"penaltyApplied", result.PenaltyApplied,
	)
	r.arm(r.hub.cfg.ResultDisplayDelay, r.afterResult)
	r.broadcastGame()
}

func (r *Room) afterResult() {
	if r.game.HasNextRound() {
		r.startRound()
		return
	}

	if err := r.game.Finish(); err != nil {
		r.abortGame(err)
		return
	}
	r.timer.Cancel()

	r.logger.Info("game ended", "rounds", r.game.CurrentRound)
	r.broadcastGame()
}

// arm schedules the next step and records its deadline for the views
func (r *Room) arm(d time.Duration, next func()) {
	r.game.Deadline = r.hub.now().Add(d)
	r.timer.Arm(d, next)
}

// advanceEarly replaces the phase timer with the short buffer once every
// player has acted.
func (r *Room) advanceEarly() {
	switch r.game.Phase {
	case domain.PhaseResponse:
		r.arm(r.hub.cfg.EarlyAdvanceBuffer, r.closeResponses)
	case domain.PhaseVoting:
		r.arm(r.hub.cfg.EarlyAdvanceBuffer, r.closeVoting)
	}
}

// abortGame ends the game early. The room stays open so players can return
// to the lobby.
func (r *Room) abortGame(cause error) {
	r.timer.Cancel()
	if err := r.game.Abort(); err != nil {
		r.logger.Error("abort failed", "cause", cause, "error", err)
		return
	}
	r.logger.Warn("game aborted", "cause", cause)
	r.broadcastGame()
}

func (r *Room) submitResponse(handle, userID, text string) {
	if r.game == nil {
		r.reject(handle, domain.EventSubmitResponse, domain.ErrPhaseClosed)
		return
	}

	advance, err := r.game.SubmitResponse(userID, text)
	if err != nil {
		r.reject(handle, domain.EventSubmitResponse, err)
		return
	}

	if advance {
		r.advanceEarly()
	}
	r.broadcastGame()
}

func (r *Room) submitVote(handle, userID, targetID string) {
	if r.game == nil {
		r.reject(handle, domain.EventSubmitVote, domain.ErrPhaseClosed)
		return
	}

	advance, err := r.game.SubmitVote(userID, targetID)
	if err != nil {
		r.reject(handle, domain.EventSubmitVote, err)
		return
	}

	if advance {
		r.advanceEarly()
	}
	r.broadcastGame()
}

// leaveGame drops a player mid-game. The game ends when too few players
// remain; otherwise the departure may complete the open phase.
func (r *Room) leaveGame(userID string) {
	g := r.game
	removed, hostChanged := g.RemovePlayer(userID)
	if removed == nil {
		return
	}
	r.hub.unbind(removed.Handle, r.code)

	if g.Roster.Len() == 0 {
		r.close("everyone left")
		return
	}

	r.notice(domain.NoticeInfo, "%s left the game.", nameOf(removed))
	if hostChanged {
		r.notice(domain.NoticeInfo, "%s is now the host.", r.displayName(g.Roster.HostID()))
	}

	switch {
	case g.Phase == domain.PhaseEnded:
	case g.Roster.Len() < r.hub.cfg.MinPlayers:
		r.notice(domain.NoticeWarning, "Not enough players left. The game is over.")
		r.abortGame(domain.ErrNotEnoughPlayers)
		return
	case g.CheckEarlyExit():
		r.advanceEarly()
	}
	r.broadcastGame()
}
