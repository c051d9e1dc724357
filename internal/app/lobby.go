package app

import (
	"errors"
	"strings"

	"undercover/internal/domain"
)

// join attaches handle to userID. Members may rejoin at any time; new
// players are only admitted while the room is in its lobby.
func (r *Room) join(handle, userID, nameHint string) {
	now := r.hub.now()

	var (
		player *domain.Player
		prev   string
		err    error
	)
	if r.game != nil {
		if _, ok := r.game.Roster.Get(userID); !ok {
			r.hub.unbind(handle, r.code)
			r.sendTo(handle, domain.EventError, domain.ErrorPayload{
				Code:    domain.ErrorCode(domain.ErrGameInProgress),
				Message: domain.ErrGameInProgress.Error(),
			})
			return
		}
		player, prev, _ = r.game.Roster.Attach(userID, handle, now)
	} else {
		player, prev, err = r.lobby.Join(userID, handle, now)
		if err != nil {
			r.hub.unbind(handle, r.code)
			r.sendTo(handle, domain.EventError, domain.ErrorPayload{Code: domain.ErrorCode(err), Message: err.Error()})
			return
		}
	}

	if prev != "" && prev != handle {
		r.hub.unbind(prev, r.code)
		r.sendTo(prev, domain.EventSystemNotice, domain.NoticePayload{
			Level:   domain.NoticeWarning,
			Message: "You joined this room from another connection.",
		})
	}

	r.logger.Debug("player joined", "userId", userID, "handle", handle)

	if r.game != nil {
		r.broadcastGame()
		return
	}

	if hint := strings.TrimSpace(nameHint); hint != "" && !player.HasName() {
		if stored, _, err := r.lobby.SetDisplayName(userID, hint); err == nil {
			r.sendTo(handle, domain.EventDisplayNameSuccess, domain.DisplayNameSuccessPayload{Name: stored})
			r.notice(domain.NoticeInfo, "%s joined the room.", stored)
		}
	}
	r.broadcastLobby()
}

func (r *Room) setDisplayName(handle, userID, name string) {
	if r.game != nil {
		r.sendTo(handle, domain.EventDisplayNameError, domain.DisplayNameErrorPayload{Reason: domain.ErrGameInProgress.Error()})
		return
	}

	stored, previous, err := r.lobby.SetDisplayName(userID, name)
	if err != nil {
		if domain.IsValidation(err) {
			r.sendTo(handle, domain.EventDisplayNameError, domain.DisplayNameErrorPayload{Reason: err.Error()})
			return
		}
		r.reject(handle, domain.EventUpdateDisplayName, err)
		return
	}

	r.sendTo(handle, domain.EventDisplayNameSuccess, domain.DisplayNameSuccessPayload{Name: stored})
	switch {
	case previous == "":
		r.notice(domain.NoticeInfo, "%s joined the room.", stored)
	case previous != stored:
		r.notice(domain.NoticeInfo, "%s is now known as %s.", previous, stored)
	}
	r.broadcastLobby()
}

func (r *Room) toggleReady(handle, userID string) {
	if r.game != nil {
		r.reject(handle, domain.EventToggleReady, domain.ErrGameInProgress)
		return
	}

	player, err := r.lobby.ToggleReady(userID)
	if err != nil {
		r.reject(handle, domain.EventToggleReady, err)
		return
	}

	r.broadcastLobby()
	if player.Ready && r.lobby.AllReady() {
		r.notice(domain.NoticeInfo, "Everyone is ready. The host can start the game.")
	}
}

func (r *Room) updateSettings(handle, userID string, settings domain.Settings) {
	if r.game != nil {
		r.reject(handle, domain.EventUpdateLobbySettings, domain.ErrGameInProgress)
		return
	}

	if err := r.lobby.UpdateSettings(userID, settings); err != nil {
		r.reject(handle, domain.EventUpdateLobbySettings, err)
		return
	}

	r.logger.Debug("settings updated", "difficulty", settings.Difficulty, "totalRounds", settings.TotalRounds)
	r.notice(domain.NoticeInfo, "The host changed the game settings. Everyone needs to ready up again.")
	r.broadcastLobby()
}

func (r *Room) kick(handle, userID, targetID string) {
	if r.game != nil {
		r.reject(handle, domain.EventKickPlayer, domain.ErrGameInProgress)
		return
	}

	removed, err := r.lobby.Kick(userID, targetID)
	if err != nil {
		r.reject(handle, domain.EventKickPlayer, err)
		return
	}

	if removed.IsConnected() {
		r.hub.unbind(removed.Handle, r.code)
		r.sendTo(removed.Handle, domain.EventKickedFromLobby, domain.KickedPayload{RoomCode: r.code})
	}

	r.logger.Info("player kicked", "userId", removed.ID)
	r.notice(domain.NoticeInfo, "%s was removed by the host.", nameOf(removed))
	r.broadcastLobby()
}

// leave removes userID from the room. The room closes when nobody is left.
func (r *Room) leave(userID string) {
	if r.game != nil {
		r.leaveGame(userID)
		return
	}

	removed, hostChanged := r.lobby.Roster.Remove(userID)
	if removed == nil {
		return
	}
	r.hub.unbind(removed.Handle, r.code)

	if r.lobby.Roster.Len() == 0 {
		r.close("everyone left")
		return
	}

	r.notice(domain.NoticeInfo, "%s left the room.", nameOf(removed))
	if hostChanged {
		r.notice(domain.NoticeInfo, "%s is now the host.", r.displayName(r.lobby.Roster.HostID()))
	}
	r.broadcastLobby()
}

// disconnect keeps the player but clears their connection, unless they have
// already reconnected on another handle.
func (r *Room) disconnect(handle, userID string) {
	player, ok := r.roster().Get(userID)
	if !ok || player.Handle != handle {
		return
	}
	r.roster().Detach(userID, r.hub.now())
	r.logger.Debug("player disconnected", "userId", userID)
	r.broadcastState()
}

// startGame checks the start preconditions and, after the pacing delay,
// replaces the lobby with a game.
func (r *Room) startGame(handle, userID string) {
	if r.game != nil {
		r.reject(handle, domain.EventStartGame, domain.ErrGameInProgress)
		return
	}
	if r.lobby.Status == domain.StatusStarting {
		return
	}

	if err := r.lobby.CheckStart(userID); err != nil {
		if errors.Is(err, domain.ErrNotHost) {
			r.reject(handle, domain.EventStartGame, err)
			return
		}
		r.notice(domain.NoticeWarning, "Cannot start yet: %s.", err.Error())
		return
	}

	r.lobby.Status = domain.StatusStarting
	r.broadcastLobby()
	r.timer.Arm(r.hub.cfg.StartDelay, r.beginGame)
}

func (r *Room) beginGame() {
	if r.game != nil || r.lobby.Status != domain.StatusStarting {
		return
	}

	if err := r.lobby.ConfirmStart(); err != nil {
		r.lobby.Status = domain.StatusWaiting
		r.notice(domain.NoticeWarning, "Game start cancelled: %s.", err.Error())
		r.broadcastLobby()
		return
	}

	r.game = domain.NewGame(r.code, r.lobby.Roster, r.lobby.Settings, r.hub.rule, r.hub.now())
	r.lobby = nil

	r.logger.Info("game started", "players", r.game.Roster.Len(), "totalRounds", r.game.TotalRounds)
	r.broadcast(domain.EventGameStarted, domain.GameStartedPayload{RoomCode: r.code, TotalRounds: r.game.TotalRounds})
	r.startRound()
}

func (r *Room) closeRoom(handle, userID string) {
	if !r.roster().IsHost(userID) {
		r.reject(handle, domain.EventCloseRoom, domain.ErrNotHost)
		return
	}
	r.close("closed by the host")
}

// returnToLobby turns an ended game back into a lobby with the same roster
func (r *Room) returnToLobby(handle, userID string) {
	if r.game == nil {
		return
	}
	if !r.game.Roster.IsHost(userID) {
		r.reject(handle, domain.EventReturnToLobby, domain.ErrNotHost)
		return
	}
	if r.game.Phase != domain.PhaseEnded {
		r.reject(handle, domain.EventReturnToLobby, domain.ErrGameNotOver)
		return
	}

	r.lobby = domain.LobbyFromGame(r.game, r.hub.cfg.MinPlayers, r.hub.cfg.MaxPlayers, r.hub.now())
	r.game = nil
	r.timer.Cancel()

	r.notice(domain.NoticeInfo, "Back in the lobby. Ready up for the next game.")
	r.broadcastLobby()
}

func nameOf(p *domain.Player) string {
	if p.HasName() {
		return p.DisplayName
	}
	return "A player"
}
