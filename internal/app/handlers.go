package app

import (
	"context"
	"encoding/json"
	"strings"

	"undercover/internal/domain"
)

// RegisterHandlers subscribes the hub to every inbound game event
func (h *Hub) RegisterHandlers(src EventSource) {
	src.OnEvent(domain.EventJoinLobby, h.handleJoin)

	src.OnEvent(domain.EventUpdateDisplayName, member(h, func(r *Room, handle, userID string, p domain.UpdateDisplayNamePayload) {
		r.setDisplayName(handle, userID, p.DisplayName)
	}))
	src.OnEvent(domain.EventToggleReady, member(h, func(r *Room, handle, userID string, _ domain.RoomPayload) {
		r.toggleReady(handle, userID)
	}))
	src.OnEvent(domain.EventUpdateLobbySettings, member(h, func(r *Room, handle, userID string, p domain.UpdateSettingsPayload) {
		r.updateSettings(handle, userID, p.Settings)
	}))
	src.OnEvent(domain.EventKickPlayer, member(h, func(r *Room, handle, userID string, p domain.KickPlayerPayload) {
		r.kick(handle, userID, p.TargetUserID)
	}))
	src.OnEvent(domain.EventStartGame, member(h, func(r *Room, handle, userID string, _ domain.RoomPayload) {
		r.startGame(handle, userID)
	}))
	src.OnEvent(domain.EventSubmitResponse, member(h, func(r *Room, handle, userID string, p domain.SubmitResponsePayload) {
		r.submitResponse(handle, userID, p.Text)
	}))
	src.OnEvent(domain.EventSubmitVote, member(h, func(r *Room, handle, userID string, p domain.SubmitVotePayload) {
		r.submitVote(handle, userID, p.TargetUserID)
	}))
	src.OnEvent(domain.EventLeaveLobby, member(h, func(r *Room, _, userID string, _ domain.RoomPayload) {
		r.leave(userID)
	}))
	src.OnEvent(domain.EventCloseRoom, member(h, func(r *Room, handle, userID string, _ domain.RoomPayload) {
		r.closeRoom(handle, userID)
	}))
	src.OnEvent(domain.EventReturnToLobby, member(h, func(r *Room, handle, userID string, _ domain.RoomPayload) {
		r.returnToLobby(handle, userID)
	}))

	src.OnDisconnect(h.handleDisconnect)
}

func (h *Hub) handleJoin(handle string, raw json.RawMessage) error {
	var p domain.JoinLobbyPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	userID := strings.TrimSpace(p.UserID)
	if userID == "" {
		return domain.ErrInvalidUserID
	}
	code, err := NormalizeCode(p.RoomCode)
	if err != nil {
		return err
	}

	// A connection moving to another room, or switching identity, leaves
	// its old seat first.
	if b, ok := h.lookup(handle); ok && (b.code != code || b.userID != userID) {
		h.unbind(handle, b.code)
		_ = h.dispatch(b.code, func(r *Room) { r.disconnect(handle, b.userID) })
	}

	room, err := h.getOrCreate(context.Background(), code)
	if err != nil {
		return err
	}
	// Bound before the join is queued so the connection's next events
	// follow it into the same inbox. A rejected join unbinds again.
	h.bind(handle, code, userID)
	if !room.post(func() { room.join(handle, userID, p.DisplayNameHint) }) {
		// The room closed between lookup and post; start a fresh one.
		room, err = h.getOrCreate(context.Background(), code)
		if err != nil {
			return err
		}
		if !room.post(func() { room.join(handle, userID, p.DisplayNameHint) }) {
			h.unbind(handle, code)
			return domain.ErrRoomNotFound
		}
	}
	return nil
}

func (h *Hub) handleDisconnect(handle string) {
	b, ok := h.lookup(handle)
	if !ok {
		return
	}
	h.unbind(handle, b.code)
	if err := h.dispatch(b.code, func(r *Room) { r.disconnect(handle, b.userID) }); err != nil {
		h.logger.Debug("disconnect for closed room", "roomCode", b.code, "error", err)
	}
}

// member adapts a room action to an EventHandler. The payload is decoded
// into T, the sender is resolved from its handle binding, and the action
// runs on the room goroutine.
func member[T any](h *Hub, action func(r *Room, handle, userID string, payload T)) EventHandler {
	return func(handle string, raw json.RawMessage) error {
		var payload T
		if err := decode(raw, &payload); err != nil {
			return err
		}

		b, ok := h.lookup(handle)
		if !ok {
			return domain.ErrNotInRoom
		}
		if code := roomCodeOf(payload); code != "" && !strings.EqualFold(code, b.code) {
			return domain.ErrNotInRoom
		}

		return h.dispatch(b.code, func(r *Room) {
			action(r, handle, b.userID, payload)
		})
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.ErrInvalidPayload
	}
	return nil
}

func roomCodeOf(payload any) string {
	switch p := payload.(type) {
	case domain.RoomPayload:
		return p.RoomCode
	case domain.UpdateDisplayNamePayload:
		return p.RoomCode
	case domain.UpdateSettingsPayload:
		return p.RoomCode
	case domain.KickPlayerPayload:
		return p.RoomCode
	case domain.SubmitResponsePayload:
		return p.RoomCode
	case domain.SubmitVotePayload:
		return p.RoomCode
	}
	return ""
}
