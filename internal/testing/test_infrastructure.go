// Package testing drives whole games through the server with scripted
// websocket clients.
package testing

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/withoutx/internal/client"
	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
	"github.com/lox/withoutx/internal/server"
	"github.com/lox/withoutx/internal/tui"
)

// GameTimeout bounds a complete scripted game.
const GameTimeout = 30 * time.Second

// TestServer wraps a running server instance
type TestServer struct {
	Server *server.Server
	URL    string
}

// StartTestServer serves a fresh server with deterministic deals and no
// rate limit.
func StartTestServer(t *testing.T, seed int64) *TestServer {
	t.Helper()
	cfg := server.DefaultServerConfig()
	cfg.Rooms.Seed = seed
	cfg.Limits.MessagesPerSecond = 0

	s := server.NewServer(quietLogger(), server.WithConfig(cfg), server.WithClock(quartz.NewMock(t)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return &TestServer{Server: s, URL: ts.URL}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// TestClient is a websocket client that plays on its own: the lowest legal
// card on its turn, its longest suit as trump and an immediate finish in
// every solitaire round.
type TestClient struct {
	Name   string
	client *client.Client
	t      *testing.T

	mu         sync.Mutex
	table      *tui.Table
	log        []string
	rejections []game.Rejected
	tricks     int
	dropAfter  int
	dropped    chan struct{}
	phaseSums  map[string]int

	gameOver chan []game.Score
}

// ConnectTestClient dials the server as name with a stable identity.
func ConnectTestClient(t *testing.T, serverURL, name string) *TestClient {
	t.Helper()
	c := &TestClient{
		Name:      name,
		t:         t,
		table:     tui.NewTable(),
		dropped:   make(chan struct{}),
		phaseSums: make(map[string]int),
		gameOver:  make(chan []game.Score, 1),
	}
	c.client = client.NewClient(serverURL, quietLogger(),
		client.WithName(name),
		client.WithIdentity("id-"+strings.ToLower(name)),
		client.WithClock(quartz.NewMock(t)),
	)
	c.client.OnEvent(c.handle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.client.Connect(ctx))
	t.Cleanup(func() { _ = c.client.Disconnect() })
	return c
}

// SeatRoom connects one client per name and seats them in order.
func SeatRoom(t *testing.T, ts *TestServer, room string, names ...string) []*TestClient {
	t.Helper()
	clients := make([]*TestClient, len(names))
	for i, name := range names {
		clients[i] = ConnectTestClient(t, ts.URL, name)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		joined := make(chan struct{})
		remove := clients[i].client.AddEventHandler(game.EventTypeJoined, func(game.Event) { close(joined) })
		require.NoError(t, clients[i].client.CreateRoom(room))
		select {
		case <-joined:
		case <-ctx.Done():
			require.FailNow(t, "join timed out", "client %s", name)
		}
		remove()
		cancel()
	}
	return clients
}

// DropAfter makes the client disconnect itself once it has seen n tricks.
// Dropped is closed when that happens.
func (c *TestClient) DropAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropAfter = n
}

// Dropped is closed once a DropAfter disconnect has happened.
func (c *TestClient) Dropped() <-chan struct{} {
	return c.dropped
}

// Reconnect rejoins the last room with the same identity.
func (c *TestClient) Reconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Reconnect(ctx)
}

// WaitForGameOver blocks until the final scoreboard arrives.
func (c *TestClient) WaitForGameOver() []game.Score {
	c.t.Helper()
	select {
	case scores := <-c.gameOver:
		return scores
	case <-time.After(GameTimeout):
		c.mu.Lock()
		defer c.mu.Unlock()
		require.FailNow(c.t, "game did not finish",
			"client %s stuck in %s %q, last log:\n%s", c.Name, c.table.Phase, c.table.Label, tail(c.log, 15))
		return nil
	}
}

// Log returns the lines the TUI would have shown.
func (c *TestClient) Log() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

// Rejections returns every error the server sent this client.
func (c *TestClient) Rejections() []game.Rejected {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]game.Rejected(nil), c.rejections...)
}

// ScoreSumAtStart returns the total of all scores when the round with the
// given label began.
func (c *TestClient) ScoreSumAtStart(label string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum, ok := c.phaseSums[label]
	return sum, ok
}

// handle runs on the client's read goroutine.
func (c *TestClient) handle(ev game.Event) {
	c.mu.Lock()
	c.log = append(c.log, c.table.Apply(ev)...)
	action, drop := c.react(ev)
	c.mu.Unlock()

	if drop {
		_ = c.client.Disconnect()
		close(c.dropped)
		return
	}
	if action != nil {
		if err := action(); err != nil {
			c.t.Logf("%s: %v", c.Name, err)
		}
	}
}

// react picks the response to ev. It runs with mu held.
func (c *TestClient) react(ev game.Event) (func() error, bool) {
	t := c.table

	switch ev := ev.(type) {
	case game.Rejected:
		c.rejections = append(c.rejections, ev)
		return nil, false
	case game.GameOver:
		c.gameOver <- ev.Scores
		return nil, false
	case game.TrickWon:
		c.tricks++
		if c.dropAfter > 0 && c.tricks == c.dropAfter {
			return nil, true
		}
		return nil, false
	case game.Round:
		c.phaseSums[fmt.Sprintf("%s %d", ev.Label, ev.Number)] = scoreSum(t.Scores)
		if ev.Phase == game.PhaseSolitaire {
			return c.client.FinishSolitaire, false
		}
		return nil, false
	case game.Snapshot:
		if ev.Phase == game.PhaseSolitaire && !containsName(ev.Finished, c.Name) {
			return c.client.FinishSolitaire, false
		}
	case game.Turn, game.TrumpPrompt:
	default:
		return nil, false
	}

	switch {
	case t.MustCallTrump():
		suit := longestSuit(t.Hand)
		return func() error { return c.client.SetTrump(suit) }, false
	case t.MyTurn() && len(t.Plays) < game.NumSeats:
		card := lowestLegal(t.Hand, t.Plays)
		return func() error { return c.client.Play(card) }, false
	}
	return nil, false
}

// lowestLegal follows the lead suit when possible.
func lowestLegal(hand []deck.Card, plays []game.CardPlayed) deck.Card {
	if len(plays) > 0 {
		lead := plays[0].Card.Suit
		for _, c := range hand {
			if c.Suit == lead {
				return c
			}
		}
	}
	return hand[0]
}

func longestSuit(hand []deck.Card) deck.Suit {
	var counts [deck.NumSuits]int
	for _, c := range hand {
		counts[c.Suit]++
	}
	best := deck.Spades
	for _, s := range deck.Suits {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

func scoreSum(scores []game.Score) int {
	sum := 0
	for _, s := range scores {
		sum += s.Points
	}
	return sum
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func tail(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
