// Package apperr defines the error taxonomy shared by the game state
// machine, the session store, the transport hub, and the HTTP control
// plane, so a failure can be mapped to a wire code without string
// matching on an error message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable error category. Wire protocols (the
// transport hub's action_error frame, the HTTP control plane's status
// code) are derived from Kind, never from Error's free-text message.
type Kind string

const (
	// Authentication
	KindInvalidToken Kind = "invalid_token"
	KindTokenExpired Kind = "token_expired"
	KindUserBanned   Kind = "user_banned"

	// Authorization
	KindNotParticipant Kind = "not_participant"
	KindNotCreator     Kind = "not_creator"
	KindNotYourTurn    Kind = "not_your_turn"

	// Validation
	KindMissingField Kind = "missing_field"
	KindInvalidEnum  Kind = "invalid_enum"
	KindInvalidUUID  Kind = "invalid_uuid"
	KindOutOfRange   Kind = "out_of_range"

	// Lifecycle
	KindRoomNotFound   Kind = "room_not_found"
	KindRoomFull       Kind = "room_full"
	KindAlreadyJoined  Kind = "already_joined"
	KindGameNotActive  Kind = "game_not_active"
	KindRoundCompleted Kind = "round_completed"
	KindRoundNotFound  Kind = "round_not_found"

	// Game logic
	KindCardNotInHand             Kind = "card_not_in_hand"
	KindInvalidTarget              Kind = "invalid_target"
	KindClaimCreatureNotRecognized Kind = "claim_creature_not_recognized"

	// Capacity
	KindBusy        Kind = "busy"
	KindRateLimited Kind = "rate_limited"

	// Internal
	KindServerError Kind = "server_error"
)

// E is a typed error value carrying a Kind and a human-readable message.
// Construct with New; inspect with errors.As and the Kind field.
type E struct {
	Kind    Kind
	Message string
}

func New(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *E) Error() string {
	return e.Message
}

// Is lets errors.Is(err, apperr.New(kind, "")) match on Kind alone.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind from err, defaulting to KindServerError for any
// error that was not constructed via this package.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}
