package domain

import "errors"

// ValidationError reports malformed or out-of-range input. It is surfaced to
// the originating player only and never mutates state.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PreconditionError reports an action that is well-formed but not allowed
// right now: wrong phase, missing authorization, roster too small.
type PreconditionError struct {
	Code    string
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// Validation errors
var (
	ErrDisplayNameLength = &ValidationError{Code: "DISPLAY_NAME_LENGTH", Message: "display name must be between 2 and 16 characters"}
	ErrDisplayNameTaken  = &ValidationError{Code: "DISPLAY_NAME_TAKEN", Message: "display name is already taken in this room"}
	ErrEmptyResponse     = &ValidationError{Code: "EMPTY_RESPONSE", Message: "response cannot be empty"}
	ErrResponseTooLong   = &ValidationError{Code: "RESPONSE_TOO_LONG", Message: "response is too long"}
	ErrInvalidSettings   = &ValidationError{Code: "INVALID_SETTINGS", Message: "invalid lobby settings"}
	ErrInvalidUserID     = &ValidationError{Code: "INVALID_USER_ID", Message: "user id is required"}
	ErrInvalidRoomCode   = &ValidationError{Code: "INVALID_ROOM_CODE", Message: "invalid room code"}
	ErrInvalidPayload    = &ValidationError{Code: "INVALID_PAYLOAD", Message: "invalid message payload"}
)

// Precondition errors
var (
	ErrNotHost           = &PreconditionError{Code: "NOT_HOST", Message: "only the host can perform this action"}
	ErrNotEnoughPlayers  = &PreconditionError{Code: "NOT_ENOUGH_PLAYERS", Message: "not enough players to start"}
	ErrPlayersNotReady   = &PreconditionError{Code: "PLAYERS_NOT_READY", Message: "every player must be ready to start"}
	ErrRoomFull          = &PreconditionError{Code: "ROOM_FULL", Message: "room is full"}
	ErrGameInProgress    = &PreconditionError{Code: "GAME_IN_PROGRESS", Message: "a game is already in progress"}
	ErrGameStarting      = &PreconditionError{Code: "GAME_STARTING", Message: "the game is starting"}
	ErrGameNotOver       = &PreconditionError{Code: "GAME_NOT_OVER", Message: "the game has not ended yet"}
	ErrPlayerNotFound    = &PreconditionError{Code: "PLAYER_NOT_FOUND", Message: "player not found"}
	ErrNoDisplayName     = &PreconditionError{Code: "NO_DISPLAY_NAME", Message: "set a display name first"}
	ErrCannotKickSelf    = &PreconditionError{Code: "CANNOT_KICK_SELF", Message: "the host cannot kick themselves"}
	ErrPhaseClosed       = &PreconditionError{Code: "PHASE_CLOSED", Message: "action not accepted in the current phase"}
	ErrAlreadyVoted      = &PreconditionError{Code: "ALREADY_VOTED", Message: "already voted this round"}
	ErrCannotVoteSelf    = &PreconditionError{Code: "CANNOT_VOTE_SELF", Message: "cannot vote for yourself"}
	ErrInvalidVoteTarget = &PreconditionError{Code: "INVALID_VOTE_TARGET", Message: "invalid vote target"}
	ErrRoomNotFound      = &PreconditionError{Code: "ROOM_NOT_FOUND", Message: "room not found"}
	ErrNotInRoom         = &PreconditionError{Code: "NOT_IN_ROOM", Message: "join the room first"}
)

// ErrInvalidTransition is an internal error: the engine asked the phase
// machine for a transition its table does not allow.
var ErrInvalidTransition = errors.New("invalid phase transition")

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}

// ErrorCode returns the wire code for a domain error, or "" for anything else.
func ErrorCode(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Code
	}
	var p *PreconditionError
	if errors.As(err, &p) {
		return p.Code
	}
	return ""
}
