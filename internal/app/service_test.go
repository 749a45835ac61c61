package app

import (
	"testing"
	"time"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/domain"
)

func newWaitingRoom(t *testing.T, svc *Service) *domain.Game {
	t.Helper()
	game := svc.CreateRoom("room-1", "u-a", "Alice", 60, time.Unix(0, 0))
	if _, _, err := svc.JoinRoom(game, "u-b", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	return game
}

func TestJoinRoomEmitsParticipantJoinedAndRoomJoined(t *testing.T) {
	svc := NewService()
	game := svc.CreateRoom("room-1", "u-a", "Alice", 60, time.Unix(0, 0))

	events, entries, err := svc.JoinRoom(game, "u-b", "Bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != EventParticipantJoined {
		t.Errorf("expected first event participant_joined, got %s", events[0].Kind)
	}
	roomJoined := events[1]
	if roomJoined.Kind != EventRoomJoined {
		t.Fatalf("expected second event room_joined, got %s", roomJoined.Kind)
	}
	if len(roomJoined.Recipients) != 1 || roomJoined.Recipients[0] != "u-b" {
		t.Errorf("room_joined must be targeted only at the joiner, got %v", roomJoined.Recipients)
	}
	if len(entries) != 1 || entries[0].ActionType != "join_game" {
		t.Errorf("expected a single join_game audit entry, got %+v", entries)
	}
}

func TestStartGamePersonalizesHandsPerRecipient(t *testing.T) {
	svc := NewService()
	game := newWaitingRoom(t, svc)

	events, _, err := svc.StartGame(game, "u-a", time.Unix(1, 0))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected one game_state_update per player, got %d", len(events))
	}
	for _, ev := range events {
		payload, ok := ev.Payload.(GameStateUpdatePayload)
		if !ok {
			t.Fatalf("expected GameStateUpdatePayload, got %T", ev.Payload)
		}
		if len(ev.Recipients) != 1 {
			t.Fatalf("expected exactly one recipient, got %v", ev.Recipients)
		}
		recipient := ev.Recipients[0]
		for _, p := range payload.GameState.Players {
			if p.UserID == recipient {
				if len(p.Hand) != 9 {
					t.Errorf("recipient %s should see their own 9-card hand, got %d", recipient, len(p.Hand))
				}
			} else if p.Hand != nil {
				t.Errorf("recipient %s must not see opponent %s's hand", recipient, p.UserID)
			}
		}
	}
}

func TestStartGameRejectsNonCreator(t *testing.T) {
	svc := NewService()
	game := newWaitingRoom(t, svc)
	if _, _, err := svc.StartGame(game, "u-b", time.Unix(1, 0)); apperr.KindOf(err) != apperr.KindNotCreator {
		t.Fatalf("expected not_creator, got %v", err)
	}
}

func TestClaimRespondRoundTrip(t *testing.T) {
	svc := NewService()
	game := newWaitingRoom(t, svc)
	if _, _, err := svc.StartGame(game, "u-a", time.Unix(1, 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	claimer := game.CurrentTurnUserID
	target := game.OpponentOf(claimer).UserID
	card := game.Slot(claimer).Hand[0]

	claimEvents, _, err := svc.Claim(game, claimer, card.ID, card.Creature, target, "r1", time.Unix(2, 0))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimEvents[0].Kind != EventCardClaimed {
		t.Fatalf("expected card_claimed, got %s", claimEvents[0].Kind)
	}
	payload := claimEvents[0].Payload.(CardClaimedPayload)
	if payload.ClaimedCreature != string(card.Creature) {
		t.Fatalf("expected claimed creature %s, got %s", card.Creature, payload.ClaimedCreature)
	}

	respondEvents, entries, err := svc.Respond(game, target, "r1", true, time.Unix(3, 0))
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if respondEvents[0].Kind != EventClaimResponded {
		t.Fatalf("expected claim_responded, got %s", respondEvents[0].Kind)
	}
	responded := respondEvents[0].Payload.(ClaimRespondedPayload)
	if !responded.WasCorrect {
		t.Fatalf("truthful claim believed should be correct")
	}
	if responded.PenaltyReceiverID != target {
		t.Fatalf("truthful claim means the target %s takes the penalty regardless of belief, got %s", target, responded.PenaltyReceiverID)
	}
	foundPenaltyEntry := false
	for _, e := range entries {
		if e.ActionType == "receive_penalty" {
			foundPenaltyEntry = true
		}
	}
	if !foundPenaltyEntry {
		t.Fatalf("expected a receive_penalty audit entry, got %+v", entries)
	}
}
