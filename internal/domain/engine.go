package domain

import (
	"time"

	"cockroachpoker/internal/apperr"
)

// Join seats userID into slot 1. Only permitted while the room is waiting
// for its second occupant.
func Join(g *Game, userID, displayName string) error {
	if g.Status != StatusWaiting {
		return apperr.New(apperr.KindGameNotActive, "room %s is not waiting for players", g.ID)
	}
	if g.Slot(userID) != nil {
		return apperr.New(apperr.KindAlreadyJoined, "user %s already occupies a slot in room %s", userID, g.ID)
	}
	if g.Slots[1] != nil {
		return apperr.New(apperr.KindRoomFull, "room %s already has two players", g.ID)
	}
	g.Slots[1] = newSlot(userID, displayName, 1)
	return nil
}

// Leave removes userID from a waiting room. If the creator leaves, the
// whole room is destroyed (callers should evict it from the session
// registry); this function only reports that verdict via destroyed.
func Leave(g *Game, userID string) (destroyed bool, err error) {
	if g.Status != StatusWaiting {
		return false, apperr.New(apperr.KindGameNotActive, "room %s is not in the waiting state", g.ID)
	}
	if g.Slot(userID) == nil {
		return false, apperr.New(apperr.KindNotParticipant, "user %s is not in room %s", userID, g.ID)
	}
	if userID == g.CreatorUserID {
		return true, nil
	}
	for i, s := range g.Slots {
		if s != nil && s.UserID == userID {
			g.Slots[i] = nil
		}
	}
	return false, nil
}

// Start deals a fresh shuffled deck and transitions the room into an
// in-progress game. Only the creator may start, and only once both slots
// are occupied. deck must already be a full 24-card deck in the desired
// (shuffled) order; callers build it with BuildDeck+Shuffle so this
// function stays a pure transition over its inputs.
func Start(g *Game, callerUserID string, deck []Card, now time.Time) error {
	if g.Status != StatusWaiting {
		return apperr.New(apperr.KindGameNotActive, "room %s is not waiting", g.ID)
	}
	if callerUserID != g.CreatorUserID {
		return apperr.New(apperr.KindNotCreator, "only the creator may start room %s", g.ID)
	}
	if g.Slots[0] == nil || g.Slots[1] == nil {
		return apperr.New(apperr.KindOutOfRange, "room %s needs two players to start", g.ID)
	}
	handA, handB, reserve, err := Deal(deck)
	if err != nil {
		return apperr.New(apperr.KindServerError, "%v", err)
	}
	g.Slots[0].Hand = handA
	g.Slots[1].Hand = handB
	g.Reserve = reserve
	g.Status = StatusInProgress
	g.CurrentTurnUserID = g.Slots[0].UserID
	g.RoundNumber = 0
	g.Round = nil
	_ = now
	return nil
}

// Claim starts a new round: claimerID plays cardID out of their hand,
// alleging it is claimedCreature, and hands the turn to targetID.
// roundID is caller-supplied (the session loop mints it, typically via
// uuid) so this function stays a deterministic transition over its
// inputs rather than an RNG-touching one.
func Claim(g *Game, claimerID, cardID string, claimed Creature, targetID, roundID string) error {
	if g.Status != StatusInProgress {
		return apperr.New(apperr.KindGameNotActive, "game %s is not in progress", g.ID)
	}
	if g.Round != nil && !g.Round.IsCompleted {
		return apperr.New(apperr.KindRoundCompleted, "a round is already active in game %s", g.ID)
	}
	if claimerID != g.CurrentTurnUserID {
		return apperr.New(apperr.KindNotYourTurn, "it is not %s's turn", claimerID)
	}
	claimer := g.Slot(claimerID)
	if claimer == nil {
		return apperr.New(apperr.KindNotParticipant, "%s is not seated in game %s", claimerID, g.ID)
	}
	if targetID == claimerID {
		return apperr.New(apperr.KindInvalidTarget, "claim target must be the opponent")
	}
	target := g.Slot(targetID)
	if target == nil {
		return apperr.New(apperr.KindInvalidTarget, "%s is not seated in game %s", targetID, g.ID)
	}
	if target.HasLost {
		return apperr.New(apperr.KindInvalidTarget, "%s has already lost", targetID)
	}
	if !claimed.Valid() {
		return apperr.New(apperr.KindClaimCreatureNotRecognized, "%q is not a recognized creature", claimed)
	}
	card, ok := claimer.removeCard(cardID)
	if !ok {
		return apperr.New(apperr.KindCardNotInHand, "card %s is not in %s's hand", cardID, claimerID)
	}
	g.Round = &Round{
		RoundID:         roundID,
		ClaimerUserID:   claimerID,
		ClaimedCreature: claimed,
		TargetUserID:    targetID,
		Card:            card,
		PassCount:       0,
	}
	g.CurrentTurnUserID = targetID
	g.RoundNumber++
	return nil
}

// RespondOutcome is the extra information a caller needs to build
// outbound events and audit entries after a successful Respond.
type RespondOutcome struct {
	ActualCreature  Creature
	WasCorrect      bool
	PenaltyReceiver string
	GameEnded       bool
	WinnerUserID    string
}

// Respond resolves the active round by responderID guessing whether the
// current claim is true.
func Respond(g *Game, responderID, roundID string, believed bool) (RespondOutcome, error) {
	var out RespondOutcome
	r := g.Round
	if r == nil || r.IsCompleted {
		return out, apperr.New(apperr.KindRoundNotFound, "no active round in game %s", g.ID)
	}
	if r.RoundID != roundID {
		return out, apperr.New(apperr.KindRoundNotFound, "round id mismatch for game %s", g.ID)
	}
	if responderID != r.TargetUserID || responderID != g.CurrentTurnUserID {
		return out, apperr.New(apperr.KindNotYourTurn, "it is not %s's turn to respond", responderID)
	}

	truthful := r.Card.Creature == r.ClaimedCreature
	wasCorrect := believed == truthful

	// The penalty always lands on whoever is wrong about the physical
	// card: the target if the claim was truthful (their disbelief was
	// wrong), the claimer if it was a lie (the lie is exposed regardless
	// of whether the target merely guessed right). believed only informs
	// WasCorrect, never who receives the card.
	var receiverID string
	if truthful {
		receiverID = r.TargetUserID
	} else {
		receiverID = r.ClaimerUserID
	}
	receiver := g.Slot(receiverID)
	if receiver == nil {
		return out, apperr.New(apperr.KindServerError, "penalty receiver %s not seated in game %s", receiverID, g.ID)
	}

	receiver.Penalty[r.Card.Creature] = append(receiver.Penalty[r.Card.Creature], r.Card)
	r.IsCompleted = true

	out.ActualCreature = r.Card.Creature
	out.WasCorrect = wasCorrect
	out.PenaltyReceiver = receiverID

	if len(receiver.Penalty[r.Card.Creature]) >= 3 {
		receiver.HasLost = true
		opponent := g.OpponentOf(receiverID)
		g.Status = StatusCompleted
		out.GameEnded = true
		if opponent != nil {
			g.WinnerUserID = opponent.UserID
			out.WinnerUserID = opponent.UserID
			g.CurrentTurnUserID = opponent.UserID
		}
	} else {
		g.CurrentTurnUserID = receiverID
	}
	return out, nil
}

// Pass forwards the round's card to newTargetID under a fresh allegation,
// rotating the authorship of the live claim to passerID.
func Pass(g *Game, passerID, roundID, newTargetID string, newClaimed Creature) error {
	r := g.Round
	if r == nil || r.IsCompleted {
		return apperr.New(apperr.KindRoundNotFound, "no active round in game %s", g.ID)
	}
	if r.RoundID != roundID {
		return apperr.New(apperr.KindRoundNotFound, "round id mismatch for game %s", g.ID)
	}
	if passerID != r.TargetUserID || passerID != g.CurrentTurnUserID {
		return apperr.New(apperr.KindNotYourTurn, "it is not %s's turn to pass", passerID)
	}
	if newTargetID == passerID {
		return apperr.New(apperr.KindInvalidTarget, "pass target must be the opponent")
	}
	newTarget := g.Slot(newTargetID)
	if newTarget == nil {
		return apperr.New(apperr.KindInvalidTarget, "%s is not seated in game %s", newTargetID, g.ID)
	}
	if newTarget.HasLost {
		return apperr.New(apperr.KindInvalidTarget, "%s has already lost", newTargetID)
	}
	if !newClaimed.Valid() {
		return apperr.New(apperr.KindClaimCreatureNotRecognized, "%q is not a recognized creature", newClaimed)
	}
	r.ClaimerUserID = passerID
	r.ClaimedCreature = newClaimed
	r.TargetUserID = newTargetID
	r.PassCount++
	g.CurrentTurnUserID = newTargetID
	return nil
}
