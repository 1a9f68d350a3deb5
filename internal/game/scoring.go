package game

import "github.com/lox/withoutx/internal/deck"

// Point values. Penalties accrue to the trick winner.
const (
	heartPenalty        = -2
	trickPenalty        = -2
	manPenalty          = -3
	queenPenalty        = -7
	kingOfHeartsPenalty = -18
	lastTwoPenalty      = -17
	trumpTrickReward    = 5
)

var solitaireRewards = [NumSeats]int{20, 10, 0, -10}

var kingOfHearts = deck.NewCard(deck.Hearts, deck.King)

// ScoreTrick returns the point delta for the winner of a completed trick.
// lastTwo marks one of the final two tricks of the deal. Contract scoring
// depends on the sub-round; every trump-round trick is worth a flat reward.
func ScoreTrick(phase Phase, contract Contract, cards []deck.Card, lastTwo bool) int {
	switch phase {
	case PhaseContract:
		if contract == Everything {
			total := 0
			for c := NoHearts; c < Everything; c++ {
				total += contractPenalty(c, cards, lastTwo)
			}
			return total
		}
		return contractPenalty(contract, cards, lastTwo)
	case PhaseTrump:
		return trumpTrickReward
	default:
		return 0
	}
}

func contractPenalty(contract Contract, cards []deck.Card, lastTwo bool) int {
	switch contract {
	case NoHearts:
		n := 0
		for _, c := range cards {
			if c.Suit == deck.Hearts {
				n++
			}
		}
		return n * heartPenalty
	case NoTricks:
		return trickPenalty
	case NoMen:
		n := 0
		for _, c := range cards {
			if c.Rank == deck.Jack || c.Rank == deck.King {
				n++
			}
		}
		return n * manPenalty
	case NoQueens:
		n := 0
		for _, c := range cards {
			if c.Rank == deck.Queen {
				n++
			}
		}
		return n * queenPenalty
	case NoKingOfHearts:
		for _, c := range cards {
			if c == kingOfHearts {
				return kingOfHeartsPenalty
			}
		}
		return 0
	case NoLastTwo:
		if lastTwo {
			return lastTwoPenalty
		}
		return 0
	}
	return 0
}

// ScoreSolitaireFinish returns the reward for the player who finished a
// solitaire round in the given arrival position (0 = first).
func ScoreSolitaireFinish(arrival int) int {
	if arrival < 0 || arrival >= len(solitaireRewards) {
		return 0
	}
	return solitaireRewards[arrival]
}
