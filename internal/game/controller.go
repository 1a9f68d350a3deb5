package game

import "github.com/lox/withoutx/internal/deck"

// afterTrick decides what follows a resolved trick: the next lead in the
// same deal, the next contract, the trump round or the solitaire rounds.
func (r *Room) afterTrick() {
	if r.tricks < TricksPerDeal {
		r.broadcastTurn()
		return
	}

	switch r.phase {
	case PhaseContract:
		if r.contract < Everything {
			r.startContract(r.contract + 1)
			return
		}
		r.startTrump()
	case PhaseTrump:
		r.startSolitaire(1)
	}
}

func (r *Room) startContract(c Contract) {
	r.phase = PhaseContract
	r.contract = c
	r.trump = nil
	r.logger.Info("Starting contract", "contract", c.ID(), "number", int(c)+1)

	r.deal(false)
	r.broadcast(Round{Phase: r.phase, Contract: c.ID(), Label: c.Name(), Number: int(c) + 1})
	r.turn = 0
	r.broadcastTurn()
}

// startTrump deals the trump round. The winner of the last contract trick
// calls trump and no card may be played until they do.
func (r *Room) startTrump() {
	r.phase = PhaseTrump
	r.trump = nil
	r.trumpCaller = r.turn
	caller := r.seats[r.trumpCaller]
	r.logger.Info("Starting trump round", "caller", caller.Name)

	r.deal(false)
	r.broadcast(Round{Phase: r.phase, Label: trumpLabel, Number: 1})
	r.broadcast(TrumpPrompt{Caller: caller.Name, Seat: caller.Seat})
}

func (r *Room) startSolitaire(round int) {
	r.phase = PhaseSolitaire
	r.trump = nil
	r.solitaireRound = round
	r.finished = nil
	r.logger.Info("Starting solitaire round", "round", round)

	r.deal(true)
	r.broadcast(Round{Phase: r.phase, Label: solitaireLabel, Number: round})
}

func (r *Room) scoreSolitaire() {
	for i, id := range r.finished {
		r.scores[id] += ScoreSolitaireFinish(i)
	}
	r.broadcastScores()
	r.finished = nil

	if r.solitaireRound < SolitaireRounds {
		r.startSolitaire(r.solitaireRound + 1)
		return
	}
	r.gameOver()
}

func (r *Room) gameOver() {
	r.phase = PhaseGameOver
	scores := r.finalScores()
	r.logger.Info("Game over", "leader", scores[0].Name, "points", scores[0].Points)
	r.broadcast(GameOver{Scores: scores})
}

// deal shuffles a fresh deck and hands 13 cards to every seat. Open hands
// are shown to the whole room.
func (r *Room) deal(open bool) {
	hands, err := deck.New(r.rng).Deal(NumSeats, TricksPerDeal)
	if err != nil {
		r.logger.Error("Deal failed", "error", err)
		return
	}
	copy(r.hands[:], hands)
	r.trick.Reset()
	r.tricks = 0

	for _, p := range r.seats {
		ev := Hand{Player: p.Name, Seat: p.Seat, Cards: r.hands[p.Seat].Cards(), Open: open}
		if open {
			r.broadcast(ev)
		} else {
			p.send(ev)
		}
	}
}
