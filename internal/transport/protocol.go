// Package transport implements C5, the real-time edge: a gorilla/websocket
// hub that authenticates connections, decodes inbound frames into
// session.Intents, and fans outbound app.Events back out with per-user
// privacy filtering already applied by the room that produced them.
package transport

import (
	"encoding/json"

	"cockroachpoker/internal/app"
	"cockroachpoker/internal/domain"
)

// inboundFrame is the wire shape of every message a client sends.
// Unused fields for a given type are simply left zero.
type inboundFrame struct {
	Type string `json:"type"`

	Token string `json:"token,omitempty"` // authenticate

	RoomID              string `json:"room_id,omitempty"`
	DisplayName         string `json:"display_name,omitempty"`         // not read; join_room uses the token's display name
	TurnTimeLimitSeconds int   `json:"turn_time_limit_seconds,omitempty"` // not read by any frame type

	CardID          string          `json:"card_id,omitempty"`          // claim
	ClaimedCreature domain.Creature `json:"claimed_creature,omitempty"` // claim, pass
	TargetUserID    string          `json:"target_user_id,omitempty"`   // claim, pass
	RoundID         string          `json:"round_id,omitempty"`         // respond, pass
	BelieveClaim    bool            `json:"believe_claim,omitempty"`    // respond
}

// outboundFrame is the wire shape of every message the server sends
// unsolicited (app events) or in direct reply to a request.
type outboundFrame struct {
	Type    app.EventKind `json:"type"`
	Payload any           `json:"payload,omitempty"`
}

// errorFrame reports a rejected request, per the action_error contract.
type errorFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func encodeEvent(e app.Event) ([]byte, error) {
	return json.Marshal(outboundFrame{Type: e.Kind, Payload: e.Payload})
}

func encodeError(code, message, requestID string) []byte {
	b, _ := json.Marshal(errorFrame{Type: "action_error", RequestID: requestID, Code: code, Message: message})
	return b
}

func encodeHeartbeatAck() []byte {
	b, _ := json.Marshal(map[string]string{"type": "heartbeat_ack"})
	return b
}
