package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
}

type fakeSender struct {
	calls []string
	err   error
}

func (f *fakeSender) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeSender) CreateRoom(room string) error        { return f.record("create " + room) }
func (f *fakeSender) JoinRoom(room string) error          { return f.record("join " + room) }
func (f *fakeSender) Play(card deck.Card) error           { return f.record("play " + card.String()) }
func (f *fakeSender) SetTrump(suit deck.Suit) error       { return f.record("trump " + suit.String()) }
func (f *fakeSender) FinishSolitaire() error              { return f.record("done") }
func (f *fakeSender) Chat(text string) error              { return f.record("chat " + text) }
func (f *fakeSender) Reconnect(ctx context.Context) error { return f.record("reconnect") }

var seats = []game.SeatInfo{
	{Seat: 0, Name: "Ana", Connected: true},
	{Seat: 1, Name: "Boris", Connected: true},
	{Seat: 2, Name: "Vera", Connected: true},
	{Seat: 3, Name: "Georgi", Connected: false},
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"", Command{Kind: CmdNone}},
		{"10h", Command{Kind: CmdPlay, Card: deck.MustParseCard("10♥")}},
		{"♣A", Command{Kind: CmdPlay, Card: deck.MustParseCard("A♣")}},
		{"/play qs", Command{Kind: CmdPlay, Card: deck.MustParseCard("Q♠")}},
		{"/create", Command{Kind: CmdCreate}},
		{"/create abcd", Command{Kind: CmdCreate, Room: "abcd"}},
		{"/join ABCD", Command{Kind: CmdJoin, Room: "ABCD"}},
		{"/trump d", Command{Kind: CmdTrump, Suit: deck.Diamonds}},
		{"/done", Command{Kind: CmdDone}},
		{"/reconnect", Command{Kind: CmdReconnect}},
		{"/help", Command{Kind: CmdHelp}},
		{"/quit", Command{Kind: CmdQuit}},
		{"добър ход", Command{Kind: CmdChat, Text: "добър ход"}},
		{"/say 10h is mine", Command{Kind: CmdChat, Text: "10h is mine"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, in := range []string{"/join", "/join a b", "/trump", "/trump x", "/play 1z", "/say", "/bogus"} {
		_, err := ParseCommand(in)
		assert.Error(t, err, in)
	}
}

func TestExecute(t *testing.T) {
	f := &fakeSender{}
	ctx := context.Background()

	for _, line := range []string{"/create ABCD", "/join WXYZ", "Kd", "/trump s", "/done", "hi", "/reconnect", "/help"} {
		cmd, err := ParseCommand(line)
		require.NoError(t, err)
		require.NoError(t, Execute(ctx, f, cmd))
	}
	assert.Equal(t, []string{
		"create ABCD", "join WXYZ", "play K♦", "trump ♠", "done", "chat hi", "reconnect",
	}, f.calls)
}

func TestTableFollowsContractDeal(t *testing.T) {
	tbl := NewTable()
	hand := deck.MustParseCards("Ah 2s Kd 10h")

	tbl.Apply(game.Joined{Room: "ABCD", Name: "Boris", Seat: 1})
	tbl.Apply(game.Membership{Seated: 4, Seats: seats})
	tbl.Apply(game.Hand{Player: "Boris", Seat: 1, Cards: hand})
	lines := tbl.Apply(game.Round{Phase: game.PhaseContract, Contract: "no-hearts", Label: "Без купи", Number: 1})
	assert.Contains(t, lines, "*** БЕЗ КУПИ ***")

	assert.Equal(t, deck.MustParseCards("2s 10h Ah Kd"), tbl.Hand, "sorted by suit then rank")
	assert.False(t, tbl.MyTurn())

	tbl.Apply(game.Turn{Player: "Ana", Seat: 0})
	assert.False(t, tbl.MyTurn())
	tbl.Apply(game.CardPlayed{Player: "Ana", Seat: 0, Card: deck.MustParseCard("3h")})
	lines = tbl.Apply(game.Turn{Player: "Boris", Seat: 1})
	assert.Equal(t, []string{"Your turn"}, lines)
	assert.True(t, tbl.MyTurn())

	tbl.Apply(game.CardPlayed{Player: "Boris", Seat: 1, Card: deck.MustParseCard("10h")})
	assert.NotContains(t, tbl.Hand, deck.MustParseCard("10h"))
	assert.Len(t, tbl.Plays, 2)

	lines = tbl.Apply(game.TrickWon{Player: "Boris", Seat: 1, Points: -4, Trick: 1})
	assert.Equal(t, []string{"Boris takes trick 1 (-4)"}, lines)
	tbl.Apply(game.TableCleared{})
	assert.Empty(t, tbl.Plays)
	assert.Nil(t, tbl.Turn)

	tbl.Apply(game.Scores{Scores: []game.Score{{Seat: 1, Name: "Boris", Points: -4}}})
	assert.Equal(t, -4, tbl.Scores[0].Points)
}

func TestTableTrumpAndSolitaire(t *testing.T) {
	tbl := NewTable()
	tbl.Apply(game.Joined{Room: "ABCD", Name: "Vera", Seat: 2})
	tbl.Apply(game.Round{Phase: game.PhaseTrump, Label: "Коз", Number: 1})

	lines := tbl.Apply(game.TrumpPrompt{Caller: "Vera", Seat: 2})
	assert.True(t, tbl.MustCallTrump())
	assert.Contains(t, lines[0], "/trump")

	tbl.Apply(game.TrumpChosen{Suit: deck.Clubs, Caller: "Vera"})
	assert.False(t, tbl.MustCallTrump())
	require.NotNil(t, tbl.Trump)
	assert.Equal(t, deck.Clubs, *tbl.Trump)

	open := deck.MustParseCards("2c 3c")
	tbl.Apply(game.Hand{Player: "Ana", Seat: 0, Cards: open, Open: true})
	tbl.Apply(game.Hand{Player: "Vera", Seat: 2, Cards: open, Open: true})
	tbl.Apply(game.Round{Phase: game.PhaseSolitaire, Label: "Пасианс", Number: 1})
	assert.Nil(t, tbl.Trump, "trump ends with its round")
	assert.Len(t, tbl.OpenHands, 2, "open hands survive the round change")
	assert.Equal(t, open, tbl.Hand)

	lines = tbl.Apply(game.SolitaireFinished{Player: "Ana", Seat: 0, Position: 1, Round: 1})
	assert.Equal(t, []string{"Ana finished #1"}, lines)
	assert.Equal(t, []string{"Ana"}, tbl.Finished)

	lines = tbl.Apply(game.GameOver{Scores: []game.Score{{Name: "Ana", Points: 20}, {Name: "Vera", Points: -5}}})
	assert.Equal(t, game.PhaseGameOver, tbl.Phase)
	assert.Contains(t, lines, "1. Ana +20")
	assert.Contains(t, lines, "2. Vera -5")
}

func TestTableRestoresSnapshot(t *testing.T) {
	tbl := NewTable()
	trump := deck.Hearts
	tbl.Apply(game.Snapshot{
		Room:        "ABCD",
		Phase:       game.PhaseTrump,
		Label:       "Коз",
		Seat:        3,
		Hand:        deck.MustParseCards("Kh 2h"),
		Table:       []game.CardPlayed{{Player: "Ana", Seat: 0, Card: deck.MustParseCard("5h")}},
		Turn:        &game.Turn{Player: "Georgi", Seat: 3},
		Trump:       &trump,
		TrumpCaller: &game.Turn{Player: "Ana", Seat: 0},
		Seats:       seats,
	})

	assert.Equal(t, "ABCD", tbl.Room)
	assert.Equal(t, 3, tbl.Seat)
	assert.Equal(t, deck.MustParseCards("2h Kh"), tbl.Hand)
	assert.Len(t, tbl.Plays, 1)
	assert.True(t, tbl.MyTurn())
	assert.False(t, tbl.MustCallTrump())
}

func TestSpectatorNeverHasTurn(t *testing.T) {
	tbl := NewTable()
	tbl.Apply(game.Joined{Room: "ABCD", Name: "Watcher", Seat: -1, Spectator: true})
	tbl.Apply(game.Turn{Player: "Ana", Seat: 0})
	tbl.Apply(game.Hand{Player: "Ana", Seat: 0, Cards: deck.MustParseCards("2s")})
	assert.False(t, tbl.MyTurn())
	assert.Empty(t, tbl.Hand)
}

func TestModelSubmit(t *testing.T) {
	f := &fakeSender{}
	m := NewModel(f, quietLogger())

	cmd := m.submit("Qs")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{"play Q♠"}, f.calls)

	assert.Nil(t, m.submit("/help"))
	assert.Contains(t, m.Log(), HelpLines[0])

	assert.Nil(t, m.submit("/trump x"))
	assert.Contains(t, m.Log()[len(m.Log())-1], "invalid card")

	f.err = errors.New("client: not connected")
	msg := m.submit("hello")()
	_, _ = m.Update(msg)
	assert.Contains(t, m.Log()[len(m.Log())-1], "not connected")

	assert.Nil(t, m.submit("/quit"))
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModelUpdateAndView(t *testing.T) {
	m := NewModel(&fakeSender{}, quietLogger())
	assert.Equal(t, "Loading...", m.View())

	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	assert.Contains(t, m.View(), "Not in a room")

	for _, ev := range []game.Event{
		game.Joined{Room: "ABCD", Name: "Ana", Seat: 0},
		game.Membership{Seated: 4, Seats: seats},
		game.Hand{Player: "Ana", Seat: 0, Cards: deck.MustParseCards("Ah Kd 2s")},
		game.Round{Phase: game.PhaseContract, Contract: "no-hearts", Label: "Без купи", Number: 1},
		game.Turn{Player: "Ana", Seat: 0},
		game.Scores{Scores: []game.Score{{Seat: 0, Name: "Ana", Points: -8}}},
	} {
		_, _ = m.Update(EventMsg{Event: ev})
	}

	view := m.View()
	assert.Contains(t, view, "ABCD")
	assert.Contains(t, view, "1/7 Без купи")
	assert.Contains(t, view, "[2♠ A♥ K♦]")
	assert.Contains(t, view, "Your turn")
	assert.Contains(t, view, "Ana (you)")
	assert.Contains(t, view, "-8")
	assert.NotContains(t, view, "\x1b[", "ascii profile renders no escapes")

	_, _ = m.Update(DisconnectedMsg{Err: errors.New("EOF")})
	assert.Contains(t, m.View(), "offline")
	assert.True(t, strings.HasPrefix(m.Log()[len(m.Log())-2], "Disconnected"))

	_, _ = m.Update(EventMsg{Event: game.Joined{Room: "ABCD", Name: "Ana", Seat: 0, Reconnect: true}})
	assert.NotContains(t, m.View(), "offline")
}

func TestModelSolitaireView(t *testing.T) {
	m := NewModel(&fakeSender{}, quietLogger())
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	for _, ev := range []game.Event{
		game.Joined{Room: "ABCD", Name: "Ana", Seat: 0},
		game.Membership{Seated: 4, Seats: seats},
		game.Hand{Player: "Ana", Seat: 0, Cards: deck.MustParseCards("2c"), Open: true},
		game.Hand{Player: "Boris", Seat: 1, Cards: deck.MustParseCards("3d"), Open: true},
		game.Round{Phase: game.PhaseSolitaire, Label: "Пасианс", Number: 2},
	} {
		_, _ = m.Update(EventMsg{Event: ev})
	}

	view := m.View()
	assert.Contains(t, view, "Пасианс 2/4")
	assert.Contains(t, view, "Ana: [2♣]")
	assert.Contains(t, view, "Boris: [3♦]")
	assert.Contains(t, view, "/done")
}
