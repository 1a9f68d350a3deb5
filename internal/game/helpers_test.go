package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/randutil"
)

// recorder is a Conn that keeps every event it receives.
type recorder struct {
	events []Event
}

func (c *recorder) Send(ev Event) {
	c.events = append(c.events, ev)
}

func (c *recorder) reset() {
	c.events = nil
}

func eventsOf[T Event](c *recorder) []T {
	var out []T
	for _, ev := range c.events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func lastOf[T Event](t *testing.T, c *recorder) T {
	t.Helper()
	evs := eventsOf[T](c)
	require.NotEmpty(t, evs, "no %T received", *new(T))
	return evs[len(evs)-1]
}

var testNames = []string{"Ana", "Boris", "Vera", "Georgi"}

func newTestRoom(t *testing.T, seed int64) *Room {
	t.Helper()
	return NewRoom("ABCD",
		WithLogger(log.New(io.Discard)),
		WithRand(randutil.New(seed)),
	)
}

// newFullRoom seats p0..p3 and returns their recorders in seat order.
func newFullRoom(t *testing.T, seed int64) (*Room, []*recorder) {
	t.Helper()
	r := newTestRoom(t, seed)
	conns := make([]*recorder, NumSeats)
	for i := range NumSeats {
		conns[i] = &recorder{}
		require.NoError(t, r.Join(seatID(i), testNames[i], conns[i]))
	}
	require.True(t, r.Started())
	return r, conns
}

func seatID(seat int) PlayerID {
	return PlayerID("p" + string(rune('0'+seat)))
}

// playLegal plays the lowest legal card of whoever is on turn.
func playLegal(t *testing.T, r *Room) {
	t.Helper()
	id := r.Seats()[r.Turn()]
	lead, hasLead := r.trick.Lead()
	legal := LegalCards(r.Hand(id), lead, hasLead).Cards()
	require.NotEmpty(t, legal, "seat %d has no legal card", r.Turn())
	require.NoError(t, r.PlayCard(id, legal[0]))
}

func playTrick(t *testing.T, r *Room) {
	t.Helper()
	for range NumSeats {
		playLegal(t, r)
	}
}

func playDeal(t *testing.T, r *Room) {
	t.Helper()
	for range TricksPerDeal {
		playTrick(t, r)
	}
}

func playContracts(t *testing.T, r *Room) {
	t.Helper()
	for range NumContracts {
		require.Equal(t, PhaseContract, r.Phase())
		playDeal(t, r)
	}
}

func callTrump(t *testing.T, r *Room) {
	t.Helper()
	require.Equal(t, PhaseTrump, r.Phase())
	caller := r.Seats()[r.TrumpCaller()]
	require.NoError(t, r.SetTrump(caller, deck.Spades))
}

func finishSolitaire(t *testing.T, r *Room, order ...int) {
	t.Helper()
	for _, seat := range order {
		require.NoError(t, r.FinishSolitaire(seatID(seat)))
	}
}

func scoreSum(r *Room) int {
	total := 0
	for _, s := range r.Scores() {
		total += s.Points
	}
	return total
}
