package deck

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/withoutx/internal/randutil"
)

// Size is the number of cards in a standard deck.
const Size = NumSuits * NumRanks

// Deck represents a deck of playing cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// Standard returns the 52 cards in canonical order: suits ♠♥♦♣, ranks 2..A.
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// New creates a fresh 52-card deck shuffled with rng. A nil rng falls back
// to a time-seeded source.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = randutil.NewFromTime()
	}
	d := &Deck{
		cards: Standard(),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of cards in the deck (Fisher-Yates).
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Cards returns a copy of the remaining cards in deal order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// DealN deals n cards from the top of the deck
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards
}

// Deal splits the top players*perPlayer cards into consecutive hands, the
// same way the cards would be cut off a table deck.
func (d *Deck) Deal(players, perPlayer int) ([]Set, error) {
	if players <= 0 || perPlayer <= 0 {
		return nil, fmt.Errorf("deal %dx%d: counts must be positive", players, perPlayer)
	}
	if players*perPlayer > len(d.cards) {
		return nil, fmt.Errorf("deal %dx%d: only %d cards remaining", players, perPlayer, len(d.cards))
	}
	hands := make([]Set, players)
	for i := range hands {
		hands[i] = NewSet(d.DealN(perPlayer)...)
	}
	return hands, nil
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}
