package domain

import "testing"

func TestBuildDeckComposition(t *testing.T) {
	deck := BuildDeck()
	if len(deck) != 24 {
		t.Fatalf("expected 24 cards, got %d", len(deck))
	}
	counts := make(map[Creature]int)
	ids := make(map[string]bool)
	for _, c := range deck {
		counts[c.Creature]++
		if ids[c.ID] {
			t.Fatalf("duplicate card id %s", c.ID)
		}
		ids[c.ID] = true
	}
	for _, c := range Creatures {
		if counts[c] != 6 {
			t.Errorf("creature %s: expected 6 cards, got %d", c, counts[c])
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := BuildDeck()
	shuffled := Shuffle(deck)
	if len(shuffled) != len(deck) {
		t.Fatalf("shuffle changed deck length: %d vs %d", len(shuffled), len(deck))
	}
	counts := make(map[Creature]int)
	for _, c := range shuffled {
		counts[c.Creature]++
	}
	for _, c := range Creatures {
		if counts[c] != 6 {
			t.Errorf("creature %s: expected 6 cards after shuffle, got %d", c, counts[c])
		}
	}
	// Shuffle must not mutate its input.
	for i, c := range deck {
		if c.ID != BuildDeck()[i].ID {
			t.Fatalf("shuffle mutated its input deck")
		}
	}
}

func TestDealPartitionsExactly(t *testing.T) {
	deck := Shuffle(BuildDeck())
	handA, handB, reserve, err := Deal(deck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(handA) != 9 || len(handB) != 9 {
		t.Fatalf("expected 9-card hands, got %d and %d", len(handA), len(handB))
	}
	if len(reserve) != 6 {
		t.Fatalf("expected 6-card reserve, got %d", len(reserve))
	}
	seen := make(map[string]bool)
	for _, c := range append(append(append([]Card{}, handA...), handB...), reserve...) {
		if seen[c.ID] {
			t.Fatalf("card %s dealt twice", c.ID)
		}
		seen[c.ID] = true
	}
	if len(seen) != 24 {
		t.Fatalf("expected all 24 cards dealt across hands and reserve, got %d", len(seen))
	}
}

func TestDealRejectsWrongSizedDeck(t *testing.T) {
	if _, _, _, err := Deal(BuildDeck()[:10]); err == nil {
		t.Fatal("expected error for undersized deck")
	}
}
