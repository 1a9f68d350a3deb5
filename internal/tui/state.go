package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
)

// Table is what one client knows about its room, rebuilt from events.
type Table struct {
	Room      string
	Name      string
	Seat      int
	Spectator bool

	Phase  game.Phase
	Label  string
	Number int

	Hand      []deck.Card
	OpenHands map[int][]deck.Card
	Plays     []game.CardPlayed
	Turn      *game.Turn

	Trump       *deck.Suit
	TrumpCaller *game.Turn
	Finished    []string

	Scores []game.Score
	Seats  []game.SeatInfo
	Final  []game.Score
}

// NewTable returns the state of a client that has not joined yet.
func NewTable() *Table {
	return &Table{Seat: -1, OpenHands: make(map[int][]deck.Card)}
}

// MyTurn reports whether this client must play a card.
func (t *Table) MyTurn() bool {
	return t.Turn != nil && !t.Spectator && t.Turn.Seat == t.Seat
}

// MustCallTrump reports whether this client is the caller and trump is
// still open.
func (t *Table) MustCallTrump() bool {
	return t.Phase == game.PhaseTrump && t.Trump == nil &&
		t.TrumpCaller != nil && t.TrumpCaller.Seat == t.Seat && !t.Spectator
}

// Apply folds ev into the table and returns log lines describing it.
func (t *Table) Apply(ev game.Event) []string {
	switch ev := ev.(type) {
	case game.Joined:
		t.Room = ev.Room
		t.Name = ev.Name
		t.Seat = ev.Seat
		t.Spectator = ev.Spectator
		switch {
		case ev.Reconnect:
			return []string{fmt.Sprintf("Reconnected to room %s", ev.Room)}
		case ev.Spectator:
			return []string{fmt.Sprintf("Watching room %s", ev.Room)}
		default:
			return []string{fmt.Sprintf("Joined room %s at seat %d", ev.Room, ev.Seat+1)}
		}

	case game.Membership:
		t.Seats = ev.Seats
		return nil

	case game.Hand:
		if ev.Open {
			t.OpenHands[ev.Seat] = ev.Cards
		}
		if ev.Seat == t.Seat && !t.Spectator {
			t.Hand = sortCards(ev.Cards)
		}
		return nil

	case game.Round:
		t.Phase = ev.Phase
		t.Label = ev.Label
		t.Number = ev.Number
		t.Plays = nil
		t.Turn = nil
		t.Trump = nil
		t.TrumpCaller = nil
		t.Finished = nil
		if ev.Phase != game.PhaseSolitaire {
			clear(t.OpenHands)
		}
		return []string{"", fmt.Sprintf("*** %s ***", strings.ToUpper(ev.Label))}

	case game.Turn:
		turn := ev
		t.Turn = &turn
		if t.MyTurn() {
			return []string{"Your turn"}
		}
		return nil

	case game.CardPlayed:
		t.Plays = append(t.Plays, ev)
		if ev.Seat == t.Seat && !t.Spectator {
			t.Hand = slices.DeleteFunc(t.Hand, func(c deck.Card) bool { return c == ev.Card })
		}
		return []string{fmt.Sprintf("%s: %s", ev.Player, ev.Card)}

	case game.TrickWon:
		t.Turn = nil
		return []string{fmt.Sprintf("%s takes trick %d (%+d)", ev.Player, ev.Trick, ev.Points)}

	case game.TableCleared:
		t.Plays = nil
		return nil

	case game.Scores:
		t.Scores = ev.Scores
		return nil

	case game.TrumpPrompt:
		caller := game.Turn{Player: ev.Caller, Seat: ev.Seat}
		t.TrumpCaller = &caller
		if t.MustCallTrump() {
			return []string{"Choose trump: /trump <s|h|d|c>"}
		}
		return []string{fmt.Sprintf("%s chooses trump", ev.Caller)}

	case game.TrumpChosen:
		suit := ev.Suit
		t.Trump = &suit
		return []string{fmt.Sprintf("%s calls %s trump", ev.Caller, ev.Suit)}

	case game.SolitaireFinished:
		t.Finished = append(t.Finished, ev.Player)
		return []string{fmt.Sprintf("%s finished #%d", ev.Player, ev.Position)}

	case game.GameOver:
		t.Phase = game.PhaseGameOver
		t.Turn = nil
		t.Final = ev.Scores
		lines := []string{"", "*** GAME OVER ***"}
		for i, s := range ev.Scores {
			lines = append(lines, fmt.Sprintf("%d. %s %+d", i+1, s.Name, s.Points))
		}
		return lines

	case game.ChatMessage:
		return []string{fmt.Sprintf("<%s> %s", ev.Name, ev.Text)}

	case game.Snapshot:
		t.restore(ev)
		return []string{fmt.Sprintf("Room %s: %s", ev.Room, ev.Label)}

	case game.Rejected:
		return []string{"Error: " + ev.Message}
	}
	return nil
}

func (t *Table) restore(s game.Snapshot) {
	t.Room = s.Room
	t.Phase = s.Phase
	t.Label = s.Label
	t.Number = s.Round
	t.Seat = s.Seat
	t.Spectator = s.Spectator
	t.Hand = sortCards(s.Hand)
	t.Plays = s.Table
	t.Turn = s.Turn
	t.Trump = s.Trump
	t.TrumpCaller = s.TrumpCaller
	t.Finished = s.Finished
	t.Scores = s.Scores
	t.Seats = s.Seats
	clear(t.OpenHands)
	for _, h := range s.OpenHands {
		t.OpenHands[h.Seat] = h.Cards
	}
}

// sortCards orders a hand by suit then rank.
func sortCards(cards []deck.Card) []deck.Card {
	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, func(a, b deck.Card) int {
		if a.Suit != b.Suit {
			return int(a.Suit) - int(b.Suit)
		}
		return int(a.Rank) - int(b.Rank)
	})
	return sorted
}
