package game

import (
	"fmt"
	"slices"

	"github.com/lox/withoutx/internal/deck"
)

// seated returns the acting seated player or the rejection that applies.
func (r *Room) seated(id PlayerID) (*Player, error) {
	p := r.find(id)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p.Spectator {
		return nil, ErrNotSeated
	}
	return p, nil
}

// PlayCard plays card from the hand of the player on turn. A fourth card
// resolves the trick before PlayCard returns.
func (r *Room) PlayCard(id PlayerID, card deck.Card) error {
	p, err := r.seated(id)
	if err != nil {
		return err
	}

	switch r.phase {
	case PhaseContract:
	case PhaseTrump:
		if r.trump == nil {
			return ErrTrumpNotSet
		}
	case PhaseGameOver:
		return ErrGameOver
	default:
		return fmt.Errorf("%w: no tricks during %s", ErrWrongPhase, r.phase)
	}

	if r.seats[r.turn] != p {
		return ErrNotYourTurn
	}
	hand := r.hands[p.Seat]
	if !hand.Has(card) {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card)
	}
	lead, hasLead := r.trick.Lead()
	if err := CheckFollowSuit(hand, card, lead, hasLead); err != nil {
		return err
	}

	r.hands[p.Seat].Remove(card)
	r.trick.Add(p.Seat, card)
	r.logger.Debug("Card played", "player", p.Name, "card", card, "trick", r.tricks+1)
	r.broadcast(CardPlayed{Player: p.Name, Seat: p.Seat, Card: card})

	if !r.trick.Complete() {
		r.turn = (r.turn + 1) % NumSeats
		r.broadcastTurn()
		return nil
	}

	r.resolveTrick()
	return nil
}

func (r *Room) resolveTrick() {
	lead, _ := r.trick.Lead()
	win, _ := Winner(r.trick.Plays(), lead, r.trump)
	winner := r.seats[win.Seat]
	cards := r.trick.Cards()

	lastTwo := r.tricks >= TricksPerDeal-2
	points := ScoreTrick(r.phase, r.contract, cards, lastTwo)
	r.scores[winner.ID] += points

	r.trick.Reset()
	r.turn = win.Seat
	r.tricks++

	r.logger.Debug("Trick resolved", "winner", winner.Name, "points", points, "trick", r.tricks)
	r.broadcast(TrickWon{Player: winner.Name, Seat: winner.Seat, Points: points, Trick: r.tricks, Cards: cards})
	r.broadcastScores()
	r.broadcast(TableCleared{})
	r.checkInvariants()

	r.afterTrick()
}

// SetTrump records the trump suit chosen by the trump caller and re-deals
// for play.
func (r *Room) SetTrump(id PlayerID, suit deck.Suit) error {
	p := r.find(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	switch {
	case r.phase == PhaseGameOver:
		return ErrGameOver
	case r.phase != PhaseTrump:
		return fmt.Errorf("%w: trump is only chosen in the trump round", ErrWrongPhase)
	case r.trump != nil:
		return ErrTrumpAlreadySet
	case p.Spectator || p.Seat != r.trumpCaller:
		return ErrNotTrumpCaller
	case !suit.Valid():
		return ErrInvalidSuit
	}

	r.trump = &suit
	r.logger.Info("Trump chosen", "suit", suit, "caller", p.Name)
	r.broadcast(TrumpChosen{Suit: suit, Caller: p.Name})

	r.deal(false)
	r.turn = r.trumpCaller
	r.broadcastTurn()
	return nil
}

// FinishSolitaire records that the sender emptied their hand. When all four
// have finished the round is scored by arrival order.
func (r *Room) FinishSolitaire(id PlayerID) error {
	p, err := r.seated(id)
	if err != nil {
		return err
	}
	switch r.phase {
	case PhaseSolitaire:
	case PhaseGameOver:
		return ErrGameOver
	default:
		return fmt.Errorf("%w: not a solitaire round", ErrWrongPhase)
	}
	if slices.Contains(r.finished, p.ID) {
		return ErrAlreadyFinished
	}

	r.finished = append(r.finished, p.ID)
	r.logger.Debug("Solitaire finish", "player", p.Name, "position", len(r.finished), "round", r.solitaireRound)
	r.broadcast(SolitaireFinished{
		Player:   p.Name,
		Seat:     p.Seat,
		Position: len(r.finished),
		Round:    r.solitaireRound,
	})

	if len(r.finished) < NumSeats {
		return nil
	}
	r.scoreSolitaire()
	return nil
}
