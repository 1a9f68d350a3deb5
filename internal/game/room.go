package game

import (
	rand "math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/randutil"
)

// Room owns the complete mutable state of one game. It is not safe for
// concurrent use: every call must come from the single goroutine that owns
// the room.
type Room struct {
	code   string
	logger *log.Logger
	rng    *rand.Rand

	seats      []*Player
	spectators []*Player
	scores     map[PlayerID]int
	hands      [NumSeats]deck.Set

	trick  Trick
	turn   int
	tricks int

	started        bool
	phase          Phase
	contract       Contract
	trump          *deck.Suit
	trumpCaller    int
	solitaireRound int
	finished       []PlayerID
}

// Option configures a Room.
type Option func(*Room)

// WithLogger sets the parent logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Room) {
		r.logger = logger
	}
}

// WithRand sets the random source used for every deal.
func WithRand(rng *rand.Rand) Option {
	return func(r *Room) {
		r.rng = rng
	}
}

// NewRoom creates an empty room waiting for four players.
func NewRoom(code string, opts ...Option) *Room {
	r := &Room{
		code:   code,
		scores: make(map[PlayerID]int),
		seats:  make([]*Player, 0, NumSeats),
		phase:  PhaseWaiting,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	r.logger = r.logger.WithPrefix("room").With("code", code)
	if r.rng == nil {
		r.rng = randutil.NewFromTime()
	}
	return r
}

// Code returns the room code.
func (r *Room) Code() string { return r.code }

// Phase returns the current phase.
func (r *Room) Phase() Phase { return r.phase }

// Contract returns the current contract. Only meaningful in PhaseContract.
func (r *Room) Contract() Contract { return r.contract }

// Started reports whether the first deal has happened.
func (r *Room) Started() bool { return r.started }

// Turn returns the seat index that must play next.
func (r *Room) Turn() int { return r.turn }

// TricksPlayed returns the number of resolved tricks in the current deal.
func (r *Room) TricksPlayed() int { return r.tricks }

// SolitaireRound returns the current solitaire round, 1..4.
func (r *Room) SolitaireRound() int { return r.solitaireRound }

// TrumpCaller returns the seat allowed to choose trump.
func (r *Room) TrumpCaller() int { return r.trumpCaller }

// Trump returns the trump suit, if one is set.
func (r *Room) Trump() (deck.Suit, bool) {
	if r.trump == nil {
		return 0, false
	}
	return *r.trump, true
}

// Seats returns the seated identities in seat order.
func (r *Room) Seats() []PlayerID {
	ids := make([]PlayerID, len(r.seats))
	for i, p := range r.seats {
		ids[i] = p.ID
	}
	return ids
}

// SpectatorCount returns the number of spectators.
func (r *Room) SpectatorCount() int { return len(r.spectators) }

// ConnectedCount returns the number of members with a live connection.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.members() {
		if p.Connected() {
			n++
		}
	}
	return n
}

// Hand returns the cards currently held by a seated player.
func (r *Room) Hand(id PlayerID) deck.Set {
	p := r.find(id)
	if p == nil || p.Spectator {
		return 0
	}
	return r.hands[p.Seat]
}

// Score returns a player's score.
func (r *Room) Score(id PlayerID) int {
	return r.scores[id]
}

// Scores returns the scoreboard in seat order.
func (r *Room) Scores() []Score {
	out := make([]Score, len(r.seats))
	for i, p := range r.seats {
		out[i] = Score{ID: p.ID, Name: p.Name, Seat: p.Seat, Points: r.scores[p.ID]}
	}
	return out
}

// Label returns the display label of what is being played right now.
func (r *Room) Label() string {
	switch r.phase {
	case PhaseContract:
		return r.contract.Name()
	case PhaseTrump:
		return trumpLabel
	case PhaseSolitaire:
		return solitaireLabel
	case PhaseGameOver:
		return gameOverLabel
	}
	return ""
}

// Summary is a read-only description of a room for listings.
type Summary struct {
	Code       string `json:"code"`
	Phase      Phase  `json:"phase"`
	Label      string `json:"text"`
	Seated     int    `json:"seated"`
	Spectators int    `json:"spectators"`
	Connected  int    `json:"connected"`
}

// Summary describes the room for listings.
func (r *Room) Summary() Summary {
	return Summary{
		Code:       r.code,
		Phase:      r.phase,
		Label:      r.Label(),
		Seated:     len(r.seats),
		Spectators: len(r.spectators),
		Connected:  r.ConnectedCount(),
	}
}

func (r *Room) find(id PlayerID) *Player {
	for _, p := range r.seats {
		if p.ID == id {
			return p
		}
	}
	for _, p := range r.spectators {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) members() []*Player {
	out := make([]*Player, 0, len(r.seats)+len(r.spectators))
	out = append(out, r.seats...)
	return append(out, r.spectators...)
}

func (r *Room) broadcast(ev Event) {
	for _, p := range r.members() {
		p.send(ev)
	}
}

func (r *Room) broadcastTurn() {
	p := r.seats[r.turn]
	r.broadcast(Turn{Player: p.Name, Seat: p.Seat})
}

func (r *Room) broadcastScores() {
	r.broadcast(Scores{Scores: r.Scores()})
}

func (r *Room) membership() Membership {
	seats := make([]SeatInfo, len(r.seats))
	for i, p := range r.seats {
		seats[i] = SeatInfo{Seat: p.Seat, Name: p.Name, Connected: p.Connected()}
	}
	return Membership{
		Seated:     len(r.seats),
		Spectators: len(r.spectators),
		Seats:      seats,
	}
}

func (r *Room) finalScores() []Score {
	scores := r.Scores()
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Points > scores[j].Points
	})
	return scores
}

// snapshot builds the state visible to p.
func (r *Room) snapshot(p *Player) Snapshot {
	s := Snapshot{
		Room:      r.code,
		Phase:     r.phase,
		Label:     r.Label(),
		Seat:      p.Seat,
		Spectator: p.Spectator,
		Tricks:    r.tricks,
		Scores:    r.Scores(),
		Seats:     r.membership().Seats,
		Table:     []CardPlayed{},
	}
	if r.phase == PhaseContract {
		s.Contract = r.contract.ID()
		s.Round = int(r.contract) + 1
	}
	if r.phase == PhaseSolitaire {
		s.Round = r.solitaireRound
		for _, seat := range r.seats {
			s.OpenHands = append(s.OpenHands, Hand{
				Player: seat.Name,
				Seat:   seat.Seat,
				Cards:  r.hands[seat.Seat].Cards(),
				Open:   true,
			})
		}
		for _, id := range r.finished {
			s.Finished = append(s.Finished, r.find(id).Name)
		}
	}
	if r.started && !p.Spectator {
		s.Hand = r.hands[p.Seat].Cards()
	}
	for _, play := range r.trick.Plays() {
		s.Table = append(s.Table, CardPlayed{
			Player: r.seats[play.Seat].Name,
			Seat:   play.Seat,
			Card:   play.Card,
		})
	}
	if r.phase == PhaseContract || (r.phase == PhaseTrump && r.trump != nil) {
		on := r.seats[r.turn]
		s.Turn = &Turn{Player: on.Name, Seat: on.Seat}
	}
	if r.phase == PhaseTrump {
		caller := r.seats[r.trumpCaller]
		s.TrumpCaller = &Turn{Player: caller.Name, Seat: caller.Seat}
		if r.trump != nil {
			suit := *r.trump
			s.Trump = &suit
		}
	}
	return s
}

// checkInvariants logs structural faults. They are unreachable through the
// legality checks and are never reported to players.
func (r *Room) checkInvariants() {
	if len(r.seats) > NumSeats {
		r.logger.Error("Invariant violated: too many seats", "seats", len(r.seats))
	}
	if r.started && (r.turn < 0 || r.turn >= len(r.seats)) {
		r.logger.Error("Invariant violated: turn out of range", "turn", r.turn)
	}
	if r.trump != nil && r.phase != PhaseTrump {
		r.logger.Error("Invariant violated: trump set outside trump phase", "phase", r.phase)
	}
	if r.trick.Len() >= NumSeats {
		r.logger.Error("Invariant violated: unresolved full trick", "plays", r.trick.Len())
	}
	if r.phase == PhaseContract || r.phase == PhaseTrump {
		held := 0
		var union deck.Set
		for _, h := range r.hands {
			held += h.Len()
			union = union.Union(h)
		}
		if union.Len() != held {
			r.logger.Error("Invariant violated: hands overlap")
		}
		if held+r.trick.Len()+r.tricks*NumSeats != deck.Size {
			r.logger.Error("Invariant violated: cards not conserved",
				"held", held, "table", r.trick.Len(), "tricks", r.tricks)
		}
	}
}
