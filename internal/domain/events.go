package domain

// Inbound event names
const (
	EventJoinLobby           = "join_lobby"
	EventUpdateDisplayName   = "update_display_name"
	EventToggleReady         = "toggle_ready"
	EventUpdateLobbySettings = "update_lobby_settings"
	EventKickPlayer          = "kick_player"
	EventStartGame           = "start_game"
	EventSubmitResponse      = "submit_response"
	EventSubmitVote          = "submit_vote"
	EventLeaveLobby          = "leave_lobby"
	EventCloseRoom           = "close_room"
	EventReturnToLobby       = "return_to_lobby"
)

// Outbound event names
const (
	EventLobbyState         = "lobby_state"
	EventDisplayNameError   = "display_name_error"
	EventDisplayNameSuccess = "display_name_success"
	EventGameStateUpdate    = "game_state_update"
	EventGameStarted        = "game_started"
	EventKickedFromLobby    = "kicked_from_lobby"
	EventRoomClosed         = "room_closed"
	EventSystemNotice       = "system_notice"
	EventError              = "error"
)

// Inbound payloads

// RoomPayload carries only the room code
type RoomPayload struct {
	RoomCode string `json:"roomCode"`
}

// JoinLobbyPayload is the payload for join_lobby
type JoinLobbyPayload struct {
	RoomCode        string `json:"roomCode"`
	UserID          string `json:"userId"`
	DisplayNameHint string `json:"displayNameHint,omitempty"`
}

// UpdateDisplayNamePayload is the payload for update_display_name
type UpdateDisplayNamePayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

// UpdateSettingsPayload is the payload for update_lobby_settings
type UpdateSettingsPayload struct {
	RoomCode string   `json:"roomCode"`
	Settings Settings `json:"settings"`
}

// KickPlayerPayload is the payload for kick_player
type KickPlayerPayload struct {
	RoomCode     string `json:"roomCode"`
	TargetUserID string `json:"targetUserId"`
}

// SubmitResponsePayload is the payload for submit_response
type SubmitResponsePayload struct {
	RoomCode string `json:"roomCode"`
	Text     string `json:"text"`
}

// SubmitVotePayload is the payload for submit_vote
type SubmitVotePayload struct {
	RoomCode     string `json:"roomCode"`
	TargetUserID string `json:"targetUserId"`
}

// Outbound payloads

// NoticeLevel grades a system notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// NoticePayload is a chat-style system line shown in the room
type NoticePayload struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// DisplayNameErrorPayload is sent when a display name is rejected
type DisplayNameErrorPayload struct {
	Reason string `json:"reason"`
}

// DisplayNameSuccessPayload is sent when a display name is accepted
type DisplayNameSuccessPayload struct {
	Name string `json:"name"`
}

// GameStartedPayload is broadcast when the lobby turns into a game
type GameStartedPayload struct {
	RoomCode    string `json:"roomCode"`
	TotalRounds int    `json:"totalRounds"`
}

// KickedPayload is sent to a kicked player
type KickedPayload struct {
	RoomCode string `json:"roomCode"`
}

// RoomClosedPayload is broadcast when a room is destroyed
type RoomClosedPayload struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}

// ErrorPayload is sent when an action is rejected
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
