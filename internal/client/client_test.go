package client

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
	"github.com/lox/withoutx/internal/server"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func startServer(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()
	s := server.NewServer(quietLogger(), server.WithClock(quartz.NewMock(t)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return s, ts
}

type recorder struct {
	t      *testing.T
	client *Client
	events chan game.Event
}

func connect(t *testing.T, url, id, name string) *recorder {
	t.Helper()
	c := NewClient(url, quietLogger(), WithIdentity(id), WithName(name), WithClock(quartz.NewMock(t)))
	r := &recorder{t: t, client: c, events: make(chan game.Event, 512)}
	c.OnEvent(func(ev game.Event) { r.events <- ev })
	require.NoError(t, c.Connect(testContext(t)))
	t.Cleanup(func() { _ = c.Disconnect() })
	return r
}

// until reads events up to and including the first of type T.
func until[T game.Event](r *recorder) T {
	r.t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-r.events:
			if e, ok := ev.(T); ok {
				return e
			}
		case <-timeout:
			require.FailNow(r.t, fmt.Sprintf("timed out waiting for %T", *new(T)))
		}
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "http://localhost:8080", want: "ws://localhost:8080/ws"},
		{in: "https://cards.example.com", want: "wss://cards.example.com/ws"},
		{in: "ws://127.0.0.1:9000/", want: "ws://127.0.0.1:9000/ws"},
		{in: "ftp://example.com", wantErr: true},
		{in: "http://", wantErr: true},
		{in: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := WebSocketURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSendBeforeConnect(t *testing.T) {
	c := NewClient("http://localhost:1", quietLogger())
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Chat("hi"), ErrNotConnected)
	assert.NotEmpty(t, c.Identity(), "a fresh identity is generated")
	assert.Equal(t, -1, c.Seat())
	assert.Error(t, c.Reconnect(testContext(t)), "nothing to rejoin yet")
}

func TestConnectFailure(t *testing.T) {
	_, ts := startServer(t)
	url := ts.URL
	ts.Close()

	c := NewClient(url, quietLogger())
	assert.Error(t, c.Connect(testContext(t)))
	assert.False(t, c.IsConnected())
}

func TestCreateAndJoinRoom(t *testing.T) {
	_, ts := startServer(t)

	ana := connect(t, ts.URL, "ana", "Ana")
	require.NoError(t, ana.client.CreateRoom("abcd"))
	joined := until[game.Joined](ana)
	assert.Equal(t, "ABCD", joined.Room)
	assert.Equal(t, 0, joined.Seat)
	assert.Equal(t, "ABCD", ana.client.Room())
	assert.Equal(t, 0, ana.client.Seat())

	boris := connect(t, ts.URL, "boris", "Boris")
	require.NoError(t, boris.client.JoinRoom("ABCD"))
	assert.Equal(t, 1, until[game.Joined](boris).Seat)

	m := until[game.Membership](ana)
	for m.Seated < 2 {
		m = until[game.Membership](ana)
	}
	assert.Equal(t, "Boris", m.Seats[1].Name)
}

func TestJoinUnknownRoomIsRejected(t *testing.T) {
	_, ts := startServer(t)

	c := connect(t, ts.URL, "ana", "Ana")
	require.NoError(t, c.client.JoinRoom("NOPE"))
	rej := until[game.Rejected](c)
	assert.Equal(t, "room_not_found", rej.Code)
	assert.Empty(t, c.client.Room())
}

func TestGeneratedRoomCode(t *testing.T) {
	_, ts := startServer(t)

	c := connect(t, ts.URL, "ana", "Ana")
	require.NoError(t, c.client.CreateRoom(""))
	joined := until[game.Joined](c)
	assert.Len(t, joined.Room, 4)
	assert.Equal(t, joined.Room, c.client.Room())
}

func TestChat(t *testing.T) {
	_, ts := startServer(t)

	ana := connect(t, ts.URL, "ana", "Ana")
	require.NoError(t, ana.client.CreateRoom("CHAT"))
	until[game.Joined](ana)
	boris := connect(t, ts.URL, "boris", "Boris")
	require.NoError(t, boris.client.JoinRoom("CHAT"))
	until[game.Joined](boris)

	require.NoError(t, boris.client.Chat("здравей"))
	msg := until[game.ChatMessage](ana)
	assert.Equal(t, "Boris", msg.Name)
	assert.Equal(t, "здравей", msg.Text)
}

func seatFour(t *testing.T, url, room string) ([]*recorder, []game.Hand) {
	t.Helper()
	players := make([]*recorder, game.NumSeats)
	for i := range players {
		players[i] = connect(t, url, fmt.Sprintf("id-%d", i), fmt.Sprintf("P%d", i))
		require.NoError(t, players[i].client.CreateRoom(room))
		require.Equal(t, i, until[game.Joined](players[i]).Seat)
	}
	hands := make([]game.Hand, game.NumSeats)
	for i, p := range players {
		hands[i] = until[game.Hand](p)
		require.Len(t, hands[i].Cards, game.TricksPerDeal)
	}
	return players, hands
}

// legal picks a card from hand that follows lead when possible.
func legal(hand []deck.Card, lead *deck.Suit) deck.Card {
	if lead != nil {
		for _, c := range hand {
			if c.Suit == *lead {
				return c
			}
		}
	}
	return hand[0]
}

func TestPlayTrickThroughClients(t *testing.T) {
	_, ts := startServer(t)
	players, hands := seatFour(t, ts.URL, "ABCD")

	turn := until[game.Turn](players[0])
	require.Equal(t, 0, turn.Seat, "contracts start at seat 0")

	// Out of turn goes back to the sender only.
	wrong := players[1]
	require.NoError(t, wrong.client.Play(hands[1].Cards[0]))
	assert.Equal(t, "rejected", until[game.Rejected](wrong).Code)

	var lead *deck.Suit
	seat := turn.Seat
	for range game.NumSeats {
		card := legal(hands[seat].Cards, lead)
		require.NoError(t, players[seat].client.Play(card))
		played := until[game.CardPlayed](players[seat])
		for played.Seat != seat {
			played = until[game.CardPlayed](players[seat])
		}
		assert.Equal(t, card, played.Card)
		if lead == nil {
			s := card.Suit
			lead = &s
		}
		seat = (seat + 1) % game.NumSeats
	}

	for _, p := range players {
		won := until[game.TrickWon](p)
		assert.Len(t, won.Cards, game.NumSeats)
		assert.Equal(t, 1, won.Trick)
	}
}

func TestSetTrumpOutsideTrumpRoundIsRejected(t *testing.T) {
	_, ts := startServer(t)
	players, _ := seatFour(t, ts.URL, "TRMP")

	require.NoError(t, players[0].client.SetTrump(deck.Hearts))
	assert.Equal(t, "rejected", until[game.Rejected](players[0]).Code)

	require.NoError(t, players[2].client.FinishSolitaire())
	assert.Equal(t, "rejected", until[game.Rejected](players[2]).Code)
}

func TestReconnectKeepsSeat(t *testing.T) {
	_, ts := startServer(t)
	players, hands := seatFour(t, ts.URL, "BACK")

	vera := players[2]
	require.NoError(t, vera.client.Disconnect())
	assert.False(t, vera.client.IsConnected())

	require.NoError(t, vera.client.Reconnect(testContext(t)))
	joined := until[game.Joined](vera)
	assert.True(t, joined.Reconnect)
	assert.Equal(t, 2, joined.Seat)

	snap := until[game.Snapshot](vera)
	assert.Equal(t, "BACK", snap.Room)
	assert.ElementsMatch(t, hands[2].Cards, snap.Hand)
	assert.Equal(t, game.PhaseContract, snap.Phase)
}

func TestOnDisconnectWhenServerGoesAway(t *testing.T) {
	s, ts := startServer(t)

	c := connect(t, ts.URL, "ana", "Ana")
	dropped := make(chan error, 1)
	c.client.OnDisconnect(func(err error) { dropped <- err })
	require.NoError(t, c.client.CreateRoom("GONE"))
	until[game.Joined](c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-dropped:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("OnDisconnect not called")
	}
	assert.False(t, c.client.IsConnected())
}

func TestWaitFor(t *testing.T) {
	_, ts := startServer(t)

	c := connect(t, ts.URL, "ana", "Ana")
	ctx := testContext(t)

	done := make(chan game.Event, 1)
	go func() {
		ev, err := c.client.WaitFor(ctx, game.EventTypeMembership)
		assert.NoError(t, err)
		done <- ev
	}()

	// WaitFor registers asynchronously; keep asking until it sees one.
	require.Eventually(t, func() bool {
		require.NoError(t, c.client.CreateRoom("WAIT"))
		select {
		case ev := <-done:
			m, ok := ev.(game.Membership)
			return ok && m.Seated == 1
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.client.WaitFor(short, game.EventTypeGameOver)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
