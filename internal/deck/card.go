package deck

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned when a card or suit string cannot be parsed.
var ErrInvalidCard = errors.New("invalid card")

// Suit represents a card suit
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// NumSuits is the number of suits in a standard deck.
const NumSuits = 4

// Suits lists every suit in canonical order.
var Suits = [NumSuits]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s <= Clubs
}

// MarshalText encodes the suit as its symbol.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: suit %d", ErrInvalidCard, s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts a suit symbol or its ASCII letter.
func (s *Suit) UnmarshalText(text []byte) error {
	suit, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

// ParseSuit parses "♠", "s", "S" and friends.
func ParseSuit(str string) (Suit, error) {
	runes := []rune(strings.TrimSpace(str))
	if len(runes) != 1 {
		return 0, fmt.Errorf("%w: suit %q", ErrInvalidCard, str)
	}
	suit, ok := suitFromRune(runes[0])
	if !ok {
		return 0, fmt.Errorf("%w: suit %q", ErrInvalidCard, str)
	}
	return suit, nil
}

func suitFromRune(r rune) (Suit, bool) {
	switch r {
	case '♠', 's', 'S':
		return Spades, true
	case '♥', 'h', 'H':
		return Hearts, true
	case '♦', 'd', 'D':
		return Diamonds, true
	case '♣', 'c', 'C':
		return Clubs, true
	}
	return 0, false
}

func isSuitSymbol(r rune) bool {
	return r == '♠' || r == '♥' || r == '♦' || r == '♣'
}

// Rank represents a card rank
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// NumRanks is the number of ranks per suit.
const NumRanks = 13

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= Two && r <= Nine {
		return string(rune('0' + r))
	}
	return "?"
}

func parseRank(str string) (Rank, bool) {
	switch strings.ToUpper(str) {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return Rank(str[0] - '0'), true
	case "10", "T":
		return Ten, true
	case "J":
		return Jack, true
	case "Q":
		return Queen, true
	case "K":
		return King, true
	case "A":
		return Ace, true
	}
	return 0, false
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Power is the rank's position in the fixed ordering, 0 for a Two up to 12
// for an Ace. Powers are only comparable between cards of the same suit.
func (c Card) Power() int {
	return int(c.Rank) - int(Two)
}

// Power returns c.Power().
func Power(c Card) int {
	return c.Power()
}

// Valid reports whether c is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank >= Two && c.Rank <= Ace
}

// index maps a card to 0..51, suit major.
func (c Card) index() uint {
	return uint(c.Suit)*NumRanks + uint(c.Power())
}

// MarshalText encodes the card as rank followed by suit symbol.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %v/%v", ErrInvalidCard, c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses any form accepted by ParseCard.
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard parses a single card. Accepted forms are rank-then-suit ("10♥",
// "Qs", "th") and suit-symbol-then-rank ("♠10").
func ParseCard(str string) (Card, error) {
	runes := []rune(strings.TrimSpace(str))
	if len(runes) < 2 || len(runes) > 3 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, str)
	}

	if isSuitSymbol(runes[0]) {
		suit, _ := suitFromRune(runes[0])
		rank, ok := parseRank(string(runes[1:]))
		if !ok {
			return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, str)
		}
		return NewCard(suit, rank), nil
	}

	suit, ok := suitFromRune(runes[len(runes)-1])
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, str)
	}
	rank, ok := parseRank(string(runes[:len(runes)-1]))
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, str)
	}
	return NewCard(suit, rank), nil
}

// MustParseCard is ParseCard that panics on error. Intended for tests and
// static tables.
func MustParseCard(str string) Card {
	card, err := ParseCard(str)
	if err != nil {
		panic(err)
	}
	return card
}

// ParseCards parses a whitespace or comma separated list of cards.
func ParseCards(str string) ([]Card, error) {
	fields := strings.FieldsFunc(str, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		card, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is ParseCards that panics on error.
func MustParseCards(str string) []Card {
	cards, err := ParseCards(str)
	if err != nil {
		panic(err)
	}
	return cards
}
