package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	cardsPerCreature = 6
	deckSize         = len(Creatures) * cardsPerCreature
	handSize         = 9
)

// Card is a single physical card: a creature tag plus an opaque id that
// survives passes, reveals, and penalty-pile assignment.
type Card struct {
	Creature Creature `json:"creature"`
	ID       string   `json:"id"`
}

// BuildDeck enumerates the 24-card deck deterministically: six of each
// creature, ids "{creature}_{index}".
func BuildDeck() []Card {
	deck := make([]Card, 0, deckSize)
	for _, c := range Creatures {
		for i := 0; i < cardsPerCreature; i++ {
			deck = append(deck, Card{Creature: c, ID: fmt.Sprintf("%s_%d", c, i)})
		}
	}
	return deck
}

// Shuffle returns a new slice holding deck's cards in a uniformly random
// permutation, drawn from a cryptographically seeded source. It never
// mutates deck.
func Shuffle(deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := cryptoIntn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// cryptoIntn returns a uniform random int in [0, n) using crypto/rand.
func cryptoIntn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(fmt.Sprintf("domain: crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// Deal partitions a 24-card deck into two 9-card hands and a 6-card hidden
// reserve. The reserve removes full-deck determinism: neither player can
// deduce the opponent's exact remaining distribution. Order within a hand
// carries no meaning.
func Deal(deck []Card) (handA, handB, reserve []Card, err error) {
	if len(deck) != deckSize {
		return nil, nil, nil, fmt.Errorf("domain: deal requires a %d-card deck, got %d", deckSize, len(deck))
	}
	handA = append([]Card{}, deck[0:handSize]...)
	handB = append([]Card{}, deck[handSize:2*handSize]...)
	reserve = append([]Card{}, deck[2*handSize:]...)
	return handA, handB, reserve, nil
}
