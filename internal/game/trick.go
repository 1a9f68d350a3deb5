package game

import (
	"fmt"

	"github.com/lox/withoutx/internal/deck"
)

// Play is one card placed on the table by the player in Seat.
type Play struct {
	Seat int       `json:"seat"`
	Card deck.Card `json:"card"`
}

// Trick accumulates up to NumSeats plays. The lead suit is the suit of the
// first play.
type Trick struct {
	plays []Play
}

// Lead returns the lead suit, or false when the trick is empty.
func (t *Trick) Lead() (deck.Suit, bool) {
	if len(t.plays) == 0 {
		return 0, false
	}
	return t.plays[0].Card.Suit, true
}

// Add appends a play.
func (t *Trick) Add(seat int, card deck.Card) {
	t.plays = append(t.plays, Play{Seat: seat, Card: card})
}

// Len returns the number of plays so far.
func (t *Trick) Len() int {
	return len(t.plays)
}

// Complete reports whether every seat has played.
func (t *Trick) Complete() bool {
	return len(t.plays) >= NumSeats
}

// Plays returns a copy of the plays in table order.
func (t *Trick) Plays() []Play {
	out := make([]Play, len(t.plays))
	copy(out, t.plays)
	return out
}

// Cards returns the played cards in table order.
func (t *Trick) Cards() []deck.Card {
	out := make([]deck.Card, len(t.plays))
	for i, p := range t.plays {
		out[i] = p.Card
	}
	return out
}

// Reset clears the trick for the next lead.
func (t *Trick) Reset() {
	t.plays = t.plays[:0]
}

// LegalCards returns the cards in hand that may be played onto a trick with
// the given lead. Without a lead, or when the hand is void in the lead suit,
// every card is legal.
func LegalCards(hand deck.Set, lead deck.Suit, hasLead bool) deck.Set {
	if !hasLead {
		return hand
	}
	if follow := hand.OfSuit(lead); !follow.Empty() {
		return follow
	}
	return hand
}

// CheckFollowSuit enforces the follow-suit law for card played from hand.
func CheckFollowSuit(hand deck.Set, card deck.Card, lead deck.Suit, hasLead bool) error {
	if !hasLead || card.Suit == lead {
		return nil
	}
	if hand.HasSuit(lead) {
		return fmt.Errorf("%w: %s was led", ErrMustFollowSuit, lead)
	}
	return nil
}

// Winner picks the winning play. A trump beats any non-trump; otherwise the
// highest card of the lead suit wins. Cards of other suits never win. trump
// is nil outside the trump round. The result does not depend on the order
// of plays.
func Winner(plays []Play, lead deck.Suit, trump *deck.Suit) (Play, bool) {
	if len(plays) == 0 {
		return Play{}, false
	}
	best := plays[0]
	for _, p := range plays[1:] {
		if beats(p.Card, best.Card, lead, trump) {
			best = p
		}
	}
	return best, true
}

func beats(card, best deck.Card, lead deck.Suit, trump *deck.Suit) bool {
	isTrump := func(c deck.Card) bool {
		return trump != nil && c.Suit == *trump
	}
	switch {
	case isTrump(card) && !isTrump(best):
		return true
	case card.Suit == best.Suit:
		return card.Power() > best.Power()
	case card.Suit == lead && !isTrump(best):
		return true
	}
	return false
}
