// Package game implements the rules engine for "Without X", a four player
// Bulgarian trick avoidance game.
//
// The main type is Room, which owns everything about one game: seats,
// spectators, hands, scores, the current trick and the phase.
//
// # Phases
//
// A game moves strictly forward through
//
//	CONTRACT[0..6] -> TRUMP -> SOLITAIRE[1..4] -> GAME_OVER
//
// The seven contracts are 13-trick deals where the trick winner collects
// penalties (hearts, tricks, jacks and kings, queens, the king of hearts, the
// last two tricks, then all of them at once). The trump round is a 13-trick
// deal where the trump caller names a suit and every trick is worth +5. The
// four solitaire rounds are races to empty a hand, rewarded +20/+10/0/-10 by
// arrival order.
//
// # Basic Usage
//
//	r := game.NewRoom("ABCD", game.WithRand(randutil.New(42)))
//	_ = r.Join("p1", "Ana", conn1)
//	// ...three more joins deal the first contract
//	err := r.PlayCard("p1", deck.MustParseCard("2♣"))
//
// Every outbound event goes through the Conn handle of each member. Room is
// not safe for concurrent use; the server runs each room inside its own
// goroutine and funnels every intent through it.
package game
