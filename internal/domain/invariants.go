package domain

import "fmt"

// CheckInvariants asserts the structural invariants that must hold after
// every accepted transition. It is cheap (24 cards) and is meant to be
// called by a room's writer loop after each intent it applies without
// error, converting a violation
// into a server_error plus room eviction rather than silent corruption.
func CheckInvariants(g *Game) error {
	seen := make(map[string]string) // card id -> location
	record := func(cardID, location string) error {
		if prev, ok := seen[cardID]; ok {
			return fmt.Errorf("domain: card %s found in both %s and %s", cardID, prev, location)
		}
		seen[cardID] = location
		return nil
	}

	for _, s := range g.OccupiedSlots() {
		for _, c := range s.Hand {
			if err := record(c.ID, fmt.Sprintf("hand:%s", s.UserID)); err != nil {
				return err
			}
		}
		for creature, pile := range s.Penalty {
			for _, c := range pile {
				if c.Creature != creature {
					return fmt.Errorf("domain: card %s misfiled under penalty pile %s", c.ID, creature)
				}
				if err := record(c.ID, fmt.Sprintf("penalty:%s", s.UserID)); err != nil {
					return err
				}
			}
			if len(pile) > 3 {
				return fmt.Errorf("domain: penalty pile %s for %s exceeds 3 cards", creature, s.UserID)
			}
		}
	}
	for _, c := range g.Reserve {
		if err := record(c.ID, "reserve"); err != nil {
			return err
		}
	}
	if g.Round != nil && !g.Round.IsCompleted {
		if err := record(g.Round.Card.ID, "round"); err != nil {
			return err
		}
	}

	if g.Status == StatusInProgress || g.Status == StatusCompleted {
		if len(seen) != deckSize {
			return fmt.Errorf("domain: expected %d cards accounted for, found %d", deckSize, len(seen))
		}
	}

	if g.Round != nil && !g.Round.IsCompleted {
		if g.CurrentTurnUserID != g.Round.TargetUserID {
			return fmt.Errorf("domain: current turn %s does not match active round target %s", g.CurrentTurnUserID, g.Round.TargetUserID)
		}
	}

	active := 0
	var loser *PlayerSlot
	for _, s := range g.OccupiedSlots() {
		if s.HasLost {
			active++
			loser = s
		}
	}
	if active > 1 {
		return fmt.Errorf("domain: more than one slot has lost in game %s", g.ID)
	}
	if g.Status == StatusCompleted && loser == nil {
		return fmt.Errorf("domain: game %s is completed but no slot has lost", g.ID)
	}

	return nil
}
