package game

import "github.com/lox/withoutx/internal/deck"

// Intent is the closed set of actions a connection can ask a room to apply.
type Intent interface {
	intent()
}

// Join seats, reconnects or adds a spectator.
type Join struct {
	Identity PlayerID
	Name     string
	Conn     Conn
}

// PlayCard plays a card onto the current trick.
type PlayCard struct {
	Card deck.Card
}

// SetTrump chooses the trump suit for the trump round.
type SetTrump struct {
	Suit deck.Suit
}

// SolitaireFinish signals the sender emptied their hand this solitaire round.
type SolitaireFinish struct{}

// Chat is re-broadcast verbatim with the sender's name.
type Chat struct {
	Text string
}

func (Join) intent()            {}
func (PlayCard) intent()        {}
func (SetTrump) intent()        {}
func (SolitaireFinish) intent() {}
func (Chat) intent()            {}

// Apply dispatches an intent from the player with the given identity.
// Join uses the identity carried in the intent.
func (r *Room) Apply(id PlayerID, in Intent) error {
	switch in := in.(type) {
	case Join:
		return r.Join(in.Identity, in.Name, in.Conn)
	case PlayCard:
		return r.PlayCard(id, in.Card)
	case SetTrump:
		return r.SetTrump(id, in.Suit)
	case SolitaireFinish:
		return r.FinishSolitaire(id)
	case Chat:
		return r.Chat(id, in.Text)
	default:
		return ErrUnknownIntent
	}
}
