package session

import "cockroachpoker/internal/domain"

// IntentKind names one of the operations a room's writer loop accepts.
type IntentKind string

const (
	IntentJoin    IntentKind = "join"
	IntentLeave   IntentKind = "leave"
	IntentStart   IntentKind = "start"
	IntentClaim   IntentKind = "claim"
	IntentRespond IntentKind = "respond"
	IntentPass    IntentKind = "pass"
	IntentState   IntentKind = "get_state"
)

// Intent is one queued operation against a room, submitted by either the
// HTTP control plane or the transport hub. Cancel, if non-nil, is closed
// when the originating connection goes away so a stale intent sitting in
// the queue can be dropped without being applied.
type Intent struct {
	Kind   IntentKind
	UserID string

	DisplayName string // join

	CardID          string          // claim
	ClaimedCreature domain.Creature // claim, pass
	TargetUserID    string          // claim, pass
	RoundID         string          // respond, pass
	BelieveClaim    bool            // respond

	Cancel <-chan struct{}
	Reply  chan Result
}

// Result is what a room's writer loop sends back for one Intent.
type Result struct {
	GameState *StateSnapshot
	Err       error
}

// StateSnapshot is the personalized view returned to the caller of
// get_state or any mutating intent, alongside the broadcast fan-out the
// room performs independently.
type StateSnapshot struct {
	RoomID string
	View   any // app.GameStateView, personalized for the requesting user
}
