package app

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"undercover/internal/domain"
	"undercover/internal/timer"
)

// inboxSize is the number of queued actions a room buffers before post blocks
const inboxSize = 256

// RoomInfo is a read-only snapshot of a room, published after every action
type RoomInfo struct {
	Code      string            `json:"roomCode"`
	Status    domain.RoomStatus `json:"status"`
	Phase     domain.Phase      `json:"phase,omitempty"`
	Players   int               `json:"playerCount"`
	Connected int               `json:"connectedCount"`
	IdleSince time.Time         `json:"-"`
}

// Room owns one lobby or one game and applies every action to it on a single
// goroutine. Nothing outside that goroutine reads or writes lobby or game.
type Room struct {
	code   string
	hub    *Hub
	logger *slog.Logger

	inbox chan func()
	done  chan struct{}

	// Owned by the room goroutine
	closed    bool
	createdAt time.Time
	lobby     *domain.Lobby
	game      *domain.Game
	timer     *timer.Phase

	info atomic.Pointer[RoomInfo]
}

func newRoom(h *Hub, code string, settings domain.Settings) *Room {
	now := h.now()
	r := &Room{
		code:      code,
		hub:       h,
		logger:    h.logger.With("roomCode", code),
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
		createdAt: now,
		lobby:     domain.NewLobby(code, settings, h.cfg.MinPlayers, h.cfg.MaxPlayers, now),
	}
	r.timer = timer.NewPhase(h.sched, func(f func()) { r.post(f) })
	r.publish()
	return r
}

// Info returns the latest published snapshot. Safe from any goroutine.
func (r *Room) Info() RoomInfo {
	return *r.info.Load()
}

// post queues f on the room goroutine. It returns false once the room is
// closed.
func (r *Room) post(f func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}

	select {
	case r.inbox <- f:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) run() {
	for {
		select {
		case <-r.done:
			return
		case f := <-r.inbox:
			r.apply(f)
			if r.closed {
				return
			}
			r.publish()
		}
	}
}

// apply runs one action. A panic is logged and the room keeps running.
func (r *Room) apply(f func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("recovered panic in room", "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	f()
}

func (r *Room) roster() *domain.Roster {
	if r.game != nil {
		return r.game.Roster
	}
	return r.lobby.Roster
}

func (r *Room) status() domain.RoomStatus {
	if r.game != nil {
		return r.game.Status()
	}
	return r.lobby.Status
}

func (r *Room) publish() {
	roster := r.roster()
	info := &RoomInfo{
		Code:      r.code,
		Status:    r.status(),
		Players:   roster.Len(),
		Connected: roster.ConnectedCount(),
		IdleSince: r.idleSince(),
	}
	if r.game != nil {
		info.Phase = r.game.Phase
	}
	r.info.Store(info)
}

func (r *Room) idleSince() time.Time {
	since, idle := r.roster().IdleSince()
	if !idle {
		return time.Time{}
	}
	if since.Before(r.createdAt) {
		return r.createdAt
	}
	return since
}

// idleFor returns how long nobody has been connected, or 0 if someone is
func (r *Room) idleFor(now time.Time) time.Duration {
	if r.roster().ConnectedCount() > 0 {
		return 0
	}
	return now.Sub(r.idleSince())
}

// close stops the room: cancels its timer, tells everyone still connected,
// releases their handles and removes the room from the registry.
func (r *Room) close(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	r.timer.Cancel()

	payload := domain.RoomClosedPayload{RoomCode: r.code, Reason: reason}
	for _, p := range r.roster().Players() {
		if p.IsConnected() {
			r.sendTo(p.Handle, domain.EventRoomClosed, payload)
			r.hub.unbind(p.Handle, r.code)
		}
	}

	r.hub.destroy(r.code, r)
	close(r.done)

	r.logger.Info("room closed", "reason", reason)
}

func (r *Room) sendTo(handle, event string, payload any) {
	if handle == "" {
		return
	}
	if err := r.hub.gateway.Send(handle, event, payload); err != nil {
		r.logger.Debug("send failed", "event", event, "error", err)
	}
}

func (r *Room) broadcast(event string, payload any) {
	for _, p := range r.roster().Players() {
		if p.IsConnected() {
			r.sendTo(p.Handle, event, payload)
		}
	}
}

func (r *Room) broadcastLobby() {
	r.broadcast(domain.EventLobbyState, r.lobby.State())
}

// broadcastGame sends each connected player their own projection
func (r *Room) broadcastGame() {
	for _, p := range r.game.Roster.Players() {
		if p.IsConnected() {
			r.sendTo(p.Handle, domain.EventGameStateUpdate, domain.Project(r.game, p.ID))
		}
	}
}

// broadcastState sends whichever state the room currently holds
func (r *Room) broadcastState() {
	if r.game != nil {
		r.broadcastGame()
		return
	}
	r.broadcastLobby()
}

func (r *Room) notice(level domain.NoticeLevel, format string, args ...any) {
	r.broadcast(domain.EventSystemNotice, domain.NoticePayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// reject reports a failed action. Validation errors go back to the sender,
// authorization failures become a warning for the sender, and anything
// else that depends on timing is dropped.
func (r *Room) reject(handle, action string, err error) {
	switch {
	case domain.IsValidation(err):
		r.sendTo(handle, domain.EventError, domain.ErrorPayload{Code: domain.ErrorCode(err), Message: err.Error()})
	case errors.Is(err, domain.ErrNotHost):
		r.sendTo(handle, domain.EventSystemNotice, domain.NoticePayload{Level: domain.NoticeWarning, Message: err.Error()})
	case domain.IsPrecondition(err):
		r.logger.Debug("action dropped", "action", action, "error", err)
	default:
		r.logger.Error("action failed", "action", action, "error", err)
	}
}

func (r *Room) displayName(userID string) string {
	if p, ok := r.roster().Get(userID); ok && p.HasName() {
		return p.DisplayName
	}
	return "A player"
}
