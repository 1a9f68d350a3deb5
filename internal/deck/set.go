package deck

import (
	"math/bits"
	"strings"
)

// Set is an unordered set of cards stored as a bitset, one bit per card.
// Bit index = suit*13 + power.
type Set uint64

const suitMask Set = 1<<NumRanks - 1

// NewSet builds a set from the given cards.
func NewSet(cards ...Card) Set {
	var s Set
	for _, c := range cards {
		s.Add(c)
	}
	return s
}

// Add inserts c.
func (s *Set) Add(c Card) {
	*s |= 1 << c.index()
}

// Remove deletes c, reporting whether it was present.
func (s *Set) Remove(c Card) bool {
	if !s.Has(c) {
		return false
	}
	*s &^= 1 << c.index()
	return true
}

// Has reports whether c is in the set.
func (s Set) Has(c Card) bool {
	if !c.Valid() {
		return false
	}
	return s&(1<<c.index()) != 0
}

// HasSuit reports whether any card of suit is in the set.
func (s Set) HasSuit(suit Suit) bool {
	return s.OfSuit(suit) != 0
}

// OfSuit returns the subset of cards of the given suit.
func (s Set) OfSuit(suit Suit) Set {
	return s & (suitMask << (uint(suit) * NumRanks))
}

// Len returns the number of cards in the set.
func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Empty reports whether the set has no cards.
func (s Set) Empty() bool {
	return s == 0
}

// Union returns the cards in either set.
func (s Set) Union(o Set) Set {
	return s | o
}

// Intersect returns the cards in both sets.
func (s Set) Intersect(o Set) Set {
	return s & o
}

// Cards returns the cards ordered by suit, then by ascending rank.
func (s Set) Cards() []Card {
	cards := make([]Card, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		idx := bits.TrailingZeros64(rest)
		cards = append(cards, Card{
			Suit: Suit(idx / NumRanks),
			Rank: Two + Rank(idx%NumRanks),
		})
	}
	return cards
}

func (s Set) String() string {
	cards := s.Cards()
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
