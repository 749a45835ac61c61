// Package audit defines the append-only action log the game state machine
// emits as it advances, and the record sink interface external storage
// implements.
package audit

import "time"

// ActionType names a state-machine transition or lifecycle event worth
// recording. These mirror the values spec'd for the external
// game_actions.action_type column.
type ActionType string

const (
	ActionJoinGame       ActionType = "join_game"
	ActionStartGame      ActionType = "start_game"
	ActionMakeClaim      ActionType = "make_claim"
	ActionGuessTruth     ActionType = "guess_truth"
	ActionGuessLie       ActionType = "guess_lie"
	ActionPassCard       ActionType = "pass_card"
	ActionReceivePenalty ActionType = "receive_penalty"
	ActionGameEnd        ActionType = "game_end"
	ActionLeaveGame      ActionType = "leave_game"
)

// Entry is one append-only audit record.
type Entry struct {
	GameID     string
	RoundID    string // empty for lifecycle entries with no associated round
	PlayerID   string
	ActionType ActionType
	Data       map[string]any
	CreatedAt  time.Time
}

// Sink is the append-only external persistence contract. A failed append
// must never roll back the in-memory state transition that produced the
// entry; callers log and swallow Append errors.
type Sink interface {
	Append(entry Entry) error
}

// NopSink discards every entry. Useful for tests and for running the
// engine with no configured persistence URL.
type NopSink struct{}

func (NopSink) Append(Entry) error { return nil }
