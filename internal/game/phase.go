package game

import "fmt"

// Game geometry.
const (
	NumSeats        = 4
	TricksPerDeal   = 13
	SolitaireRounds = 4
)

// Phase is the macro state of a room. Phases only ever move forward.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseContract
	PhaseTrump
	PhaseSolitaire
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseContract:
		return "contract"
	case PhaseTrump:
		return "trump"
	case PhaseSolitaire:
		return "solitaire"
	case PhaseGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for q := PhaseWaiting; q <= PhaseGameOver; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("game: unknown phase %q", text)
}

// Contract is one of the seven avoidance sub-rounds played in order during
// PhaseContract.
type Contract int

const (
	NoHearts Contract = iota
	NoTricks
	NoMen
	NoQueens
	NoKingOfHearts
	NoLastTwo
	Everything
)

// NumContracts is the number of contract sub-rounds.
const NumContracts = 7

var contractIDs = [NumContracts]string{
	"no-hearts",
	"no-tricks",
	"no-men",
	"no-queens",
	"no-king-of-hearts",
	"no-last-two",
	"everything",
}

var contractNames = [NumContracts]string{
	"Без купи",
	"Без ръце",
	"Без мъже",
	"Без дами",
	"Без поп купа",
	"Без последни 2 ръце",
	"Без всичко",
}

// ID returns the stable rule identifier, e.g. "no-hearts".
func (c Contract) ID() string {
	if c < 0 || c >= NumContracts {
		return "unknown"
	}
	return contractIDs[c]
}

// Name returns the display name shown to players.
func (c Contract) Name() string {
	if c < 0 || c >= NumContracts {
		return "?"
	}
	return contractNames[c]
}

func (c Contract) String() string {
	return c.ID()
}

// Labels for the non-contract phases.
const (
	trumpLabel     = "Коз"
	solitaireLabel = "Пасианс"
	gameOverLabel  = "Край"
)
