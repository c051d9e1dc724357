package domain

// Phase represents the current phase of a game
type Phase string

const (
	PhaseIdle       Phase = "idle"        // Game constructed, first round not yet started
	PhaseRoundStart Phase = "round_start" // Roles and words are being announced
	PhaseResponse   Phase = "response"    // Players write a clue about their word
	PhaseVoting     Phase = "voting"      // Everyone votes for the suspected imposter
	PhaseResult     Phase = "result"      // Round result on display
	PhaseEnded      Phase = "ended"       // Terminal
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// Trigger is an event that moves the phase machine forward.
type Trigger string

const (
	TriggerStart           Trigger = "start"
	TriggerAnnounced       Trigger = "announced"
	TriggerResponsesClosed Trigger = "responses_closed"
	TriggerVotesClosed     Trigger = "votes_closed"
	TriggerNextRound       Trigger = "next_round"
	TriggerFinish          Trigger = "finish"
	TriggerAbort           Trigger = "abort"
)

// Action is a player action that is only accepted in some phases.
type Action string

const (
	ActionSubmitResponse Action = "submit_response"
	ActionSubmitVote     Action = "submit_vote"
)

var transitions = map[Phase]map[Trigger]Phase{
	PhaseIdle: {
		TriggerStart: PhaseRoundStart,
		TriggerAbort: PhaseEnded,
	},
	PhaseRoundStart: {
		TriggerAnnounced: PhaseResponse,
		TriggerAbort:     PhaseEnded,
	},
	PhaseResponse: {
		TriggerResponsesClosed: PhaseVoting,
		TriggerAbort:           PhaseEnded,
	},
	PhaseVoting: {
		TriggerVotesClosed: PhaseResult,
		TriggerAbort:       PhaseEnded,
	},
	PhaseResult: {
		TriggerNextRound: PhaseRoundStart,
		TriggerFinish:    PhaseEnded,
		TriggerAbort:     PhaseEnded,
	},
}

var accepts = map[Phase]map[Action]bool{
	PhaseResponse: {ActionSubmitResponse: true},
	PhaseVoting:   {ActionSubmitVote: true},
}

// Next looks up the phase reached from p on trigger t.
func (p Phase) Next(t Trigger) (Phase, bool) {
	next, ok := transitions[p][t]
	return next, ok
}

// Accepts reports whether action a may be applied during phase p.
func (p Phase) Accepts(a Action) bool {
	return accepts[p][a]
}

// RoomStatus is the coarse lifecycle status of a room.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusStarting RoomStatus = "starting"
	StatusPlaying  RoomStatus = "playing"
	StatusEnded    RoomStatus = "ended"
)
