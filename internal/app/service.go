// Package app contains the Cockroach Poker use-cases: thin orchestration
// over internal/domain's pure state machine that turns each accepted
// transition into the outbound events and audit entries a room's writer
// loop needs, without performing any I/O itself.
package app

import (
	"time"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/audit"
	"cockroachpoker/internal/domain"
)

// Service holds no mutable state of its own; every method takes the
// *domain.Game it operates on and returns the events/audit entries that
// transition produced.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// CreateRoom allocates a waiting room with the caller as sole occupant of
// slot 0.
func (s *Service) CreateRoom(roomID, creatorUserID, creatorDisplayName string, turnTimeLimitSeconds int, now time.Time) *domain.Game {
	return domain.NewGame(roomID, creatorUserID, creatorDisplayName, turnTimeLimitSeconds, now)
}

// JoinRoom seats userID into slot 1.
func (s *Service) JoinRoom(game *domain.Game, userID, displayName string) ([]Event, []audit.Entry, error) {
	if err := domain.Join(game, userID, displayName); err != nil {
		return nil, nil, err
	}
	joined := game.Slot(userID)
	events := []Event{
		{
			Kind: EventParticipantJoined,
			Payload: ParticipantJoinedPayload{
				RoomID:      game.ID,
				UserID:      userID,
				DisplayName: displayName,
				Seat:        joined.Seat,
			},
		},
		{
			Kind: EventRoomJoined,
			Payload: RoomJoinedPayload{
				RoomID:            game.ID,
				RoomState:         string(game.Status),
				Participants:      participantViews(game),
				YourParticipation: ParticipantView{UserID: userID, DisplayName: displayName, Seat: joined.Seat},
			},
			Recipients: []string{userID},
		},
	}
	entries := []audit.Entry{
		{GameID: game.ID, PlayerID: userID, ActionType: audit.ActionJoinGame, CreatedAt: time.Now()},
	}
	return events, entries, nil
}

// LeaveRoom removes userID from a still-waiting room. destroyed reports
// whether the departure was the creator's, in which case the session
// layer must evict the whole room.
func (s *Service) LeaveRoom(game *domain.Game, userID string) (destroyed bool, events []Event, entries []audit.Entry, err error) {
	destroyed, err = domain.Leave(game, userID)
	if err != nil {
		return false, nil, nil, err
	}
	events = []Event{
		{Kind: EventParticipantLeft, Payload: ParticipantLeftPayload{RoomID: game.ID, UserID: userID}},
	}
	entries = []audit.Entry{
		{GameID: game.ID, PlayerID: userID, ActionType: audit.ActionLeaveGame, CreatedAt: time.Now()},
	}
	return destroyed, events, entries, nil
}

// StartGame deals a fresh cryptographically shuffled deck and begins
// play. Only the creator may call this, and only with both slots filled.
func (s *Service) StartGame(game *domain.Game, callerUserID string, now time.Time) ([]Event, []audit.Entry, error) {
	deck := domain.Shuffle(domain.BuildDeck())
	if err := domain.Start(game, callerUserID, deck, now); err != nil {
		return nil, nil, err
	}
	events := make([]Event, 0, len(game.OccupiedSlots()))
	for _, slot := range game.OccupiedSlots() {
		events = append(events, Event{
			Kind: EventGameStateUpdate,
			Payload: GameStateUpdatePayload{
				RoomID:    game.ID,
				GameState: s.BuildGameStateView(game, slot.UserID),
				Timestamp: now,
			},
			Recipients: []string{slot.UserID},
		})
	}
	entries := []audit.Entry{
		{GameID: game.ID, PlayerID: callerUserID, ActionType: audit.ActionStartGame, CreatedAt: now},
	}
	return events, entries, nil
}

// Claim plays claimerID's card, alleging claimedCreature, against target.
func (s *Service) Claim(game *domain.Game, claimerID, cardID string, claimed domain.Creature, targetID, roundID string, now time.Time) ([]Event, []audit.Entry, error) {
	if err := domain.Claim(game, claimerID, cardID, claimed, targetID, roundID); err != nil {
		return nil, nil, err
	}
	events := []Event{
		{
			Kind: EventCardClaimed,
			Payload: CardClaimedPayload{
				RoomID:          game.ID,
				RoundID:         roundID,
				ClaimerUserID:   claimerID,
				ClaimedCreature: string(claimed),
				TargetUserID:    targetID,
			},
		},
	}
	entries := []audit.Entry{
		{
			GameID: game.ID, RoundID: roundID, PlayerID: claimerID, ActionType: audit.ActionMakeClaim,
			Data:      map[string]any{"card_id": cardID, "claimed_creature": string(claimed), "target_user_id": targetID},
			CreatedAt: now,
		},
	}
	return events, entries, nil
}

// Respond resolves the active round by responderID guessing whether the
// live claim is true.
func (s *Service) Respond(game *domain.Game, responderID, roundID string, believed bool, now time.Time) ([]Event, []audit.Entry, error) {
	out, err := domain.Respond(game, responderID, roundID, believed)
	if err != nil {
		return nil, nil, err
	}

	guessAction := audit.ActionGuessLie
	if believed {
		guessAction = audit.ActionGuessTruth
	}

	events := []Event{
		{
			Kind: EventClaimResponded,
			Payload: ClaimRespondedPayload{
				RoomID:            game.ID,
				RoundID:           roundID,
				ResponderUserID:   responderID,
				BelievedClaim:     believed,
				ActualCreature:    string(out.ActualCreature),
				WasCorrect:        out.WasCorrect,
				PenaltyReceiverID: out.PenaltyReceiver,
			},
		},
		{
			Kind: EventRoundCompleted,
			Payload: RoundCompletedPayload{
				RoomID:            game.ID,
				RoundID:           roundID,
				PenaltyReceiverID: out.PenaltyReceiver,
				Creature:          string(out.ActualCreature),
			},
		},
	}
	entries := []audit.Entry{
		{GameID: game.ID, RoundID: roundID, PlayerID: responderID, ActionType: guessAction, CreatedAt: now},
		{
			GameID: game.ID, RoundID: roundID, PlayerID: out.PenaltyReceiver, ActionType: audit.ActionReceivePenalty,
			Data:      map[string]any{"creature": string(out.ActualCreature)},
			CreatedAt: now,
		},
	}

	if out.GameEnded {
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: s.buildGameEndedPayload(game, out.WinnerUserID),
		})
		entries = append(entries, audit.Entry{
			GameID: game.ID, PlayerID: out.WinnerUserID, ActionType: audit.ActionGameEnd, CreatedAt: now,
		})
	} else {
		for _, slot := range game.OccupiedSlots() {
			events = append(events, Event{
				Kind: EventGameStateUpdate,
				Payload: GameStateUpdatePayload{
					RoomID:    game.ID,
					GameState: s.BuildGameStateView(game, slot.UserID),
					Timestamp: now,
				},
				Recipients: []string{slot.UserID},
			})
		}
	}

	return events, entries, nil
}

// Pass forwards the round's card under a fresh allegation.
func (s *Service) Pass(game *domain.Game, passerID, roundID, newTargetID string, newClaimed domain.Creature, now time.Time) ([]Event, []audit.Entry, error) {
	if err := domain.Pass(game, passerID, roundID, newTargetID, newClaimed); err != nil {
		return nil, nil, err
	}
	events := []Event{
		{
			Kind: EventCardPassed,
			Payload: CardPassedPayload{
				RoomID:             game.ID,
				RoundID:            roundID,
				PasserUserID:       passerID,
				NewTargetUserID:    newTargetID,
				NewClaimedCreature: string(newClaimed),
				PassCount:          game.Round.PassCount,
			},
		},
	}
	entries := []audit.Entry{
		{
			GameID: game.ID, RoundID: roundID, PlayerID: passerID, ActionType: audit.ActionPassCard,
			Data:      map[string]any{"new_target_user_id": newTargetID, "new_claimed_creature": string(newClaimed)},
			CreatedAt: now,
		},
	}
	return events, entries, nil
}

// BuildGameStateView renders the personalized snapshot of game for
// forUserID: their own hand is included, the opponent's is not, and the
// active round's card creature is hidden while unresolved.
func (s *Service) BuildGameStateView(game *domain.Game, forUserID string) GameStateView {
	view := GameStateView{
		RoomID:            game.ID,
		Status:            string(game.Status),
		CurrentTurnUserID: game.CurrentTurnUserID,
		RoundNumber:       game.RoundNumber,
	}
	for _, slot := range game.OccupiedSlots() {
		pv := PlayerStateView{
			UserID:         slot.UserID,
			DisplayName:    slot.DisplayName,
			Seat:           slot.Seat,
			CardsRemaining: len(slot.Hand),
			Penalty:        PenaltyView(slot.Penalty),
			HasLost:        slot.HasLost,
		}
		if slot.UserID == forUserID {
			pv.Hand = slot.Hand
		}
		view.Players = append(view.Players, pv)
	}
	if game.Round != nil && !game.Round.IsCompleted {
		view.Round = &RoundView{
			RoundID:         game.Round.RoundID,
			ClaimerUserID:   game.Round.ClaimerUserID,
			ClaimedCreature: string(game.Round.ClaimedCreature),
			TargetUserID:    game.Round.TargetUserID,
			PassCount:       game.Round.PassCount,
		}
	}
	return view
}

func (s *Service) buildGameEndedPayload(game *domain.Game, winnerID string) GameEndedPayload {
	payload := GameEndedPayload{RoomID: game.ID, WinnerID: winnerID}
	for _, slot := range game.OccupiedSlots() {
		if !slot.HasLost {
			continue
		}
		payload.Losers = append(payload.Losers, LoserSummary{
			PlayerID:     slot.UserID,
			PenaltyCards: slot.Penalty,
		})
	}
	return payload
}

func participantViews(game *domain.Game) []ParticipantView {
	var out []ParticipantView
	for _, slot := range game.OccupiedSlots() {
		out = append(out, ParticipantView{UserID: slot.UserID, DisplayName: slot.DisplayName, Seat: slot.Seat})
	}
	return out
}

// KindOf is a convenience re-export so callers that only imported app do
// not also need to import apperr for the common "what kind of error is
// this" check.
func KindOf(err error) apperr.Kind {
	return apperr.KindOf(err)
}
