package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
	"github.com/lox/withoutx/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var ErrNotConnected = errors.New("client: not connected")

// EventHandler is a function that handles incoming events
type EventHandler func(game.Event)

type handlerEntry struct {
	id      int
	typ     game.EventType // empty matches every event
	handler EventHandler
}

// link is one live websocket connection. A client gets a new link on every
// Connect.
type link struct {
	conn      *websocket.Conn
	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Client represents a WebSocket client for a withoutx room
type Client struct {
	serverURL string
	clock     quartz.Clock
	logger    *log.Logger

	mu           sync.RWMutex
	link         *link
	identity     game.PlayerID
	name         string
	room         string
	seat         int
	spectator    bool
	handlers     []handlerEntry
	nextHandler  int
	onDisconnect func(error)
}

// Option configures a Client.
type Option func(*Client)

// WithIdentity sets the stable identity sent with every join. Reusing it
// after a drop reclaims the same seat.
func WithIdentity(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.identity = game.PlayerID(id)
		}
	}
}

// WithName sets the display name.
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// WithClock sets the clock driving keepalive pings and message timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		serverURL: serverURL,
		clock:     quartz.NewReal(),
		logger:    logger.WithPrefix("client"),
		identity:  game.PlayerID(uuid.NewString()),
		seat:      -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WebSocketURL converts a server URL to the websocket endpoint.
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: missing host", serverURL)
	}

	// Add WebSocket path
	u.Path = "/ws"
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	l := &link{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    lctx,
		cancel: cancel,
	}

	c.mu.Lock()
	old := c.link
	c.link = l
	c.mu.Unlock()
	if old != nil {
		c.closeLink(old, nil)
	}

	go c.readPump(l)
	go c.writePump(l)

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.mu.RLock()
	l := c.link
	c.mu.RUnlock()
	if l != nil {
		c.closeLink(l, nil)
	}
	return nil
}

func (c *Client) closeLink(l *link, cause error) {
	l.closeOnce.Do(func() {
		l.cancel()
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = l.conn.Close() // Ignore close errors during shutdown

		c.mu.Lock()
		current := c.link == l
		if current {
			c.link = nil
		}
		notify := c.onDisconnect
		c.mu.Unlock()

		c.logger.Info("Disconnected from server", "error", cause)
		if current && cause != nil && notify != nil {
			notify(cause)
		}
	})
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.link != nil
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(t protocol.MessageType, data any) error {
	c.mu.RLock()
	l := c.link
	c.mu.RUnlock()
	if l == nil {
		return ErrNotConnected
	}

	raw, err := protocol.Marshal(t, data, c.clock.Now())
	if err != nil {
		return err
	}

	select {
	case l.send <- raw:
		return nil
	case <-l.ctx.Done():
		return ErrNotConnected
	default:
		return fmt.Errorf("client: send buffer full")
	}
}

// readPump pumps messages from the WebSocket connection to the handlers
func (c *Client) readPump(l *link) {
	var cause error
	defer func() { c.closeLink(l, cause) }()

	for {
		_, raw, err := l.conn.ReadMessage()
		if err != nil {
			if l.ctx.Err() == nil {
				cause = err
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Error("WebSocket read error", "error", err)
				}
			}
			return
		}

		msg, err := protocol.Unmarshal(raw)
		if err != nil {
			c.logger.Warn("Dropping malformed frame", "error", err)
			continue
		}
		ev, err := protocol.DecodeEvent(msg)
		if err != nil {
			c.logger.Warn("Dropping undecodable event", "type", msg.Type, "error", err)
			continue
		}
		c.handleEvent(ev)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump(l *link) {
	ticker := c.clock.NewTicker(pingPeriod, "client", "ping")
	defer ticker.Stop()

	for {
		select {
		case raw := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				c.logger.Error("WebSocket write error", "error", err)
				c.closeLink(l, err)
				return
			}

		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeLink(l, err)
				return
			}

		case <-l.ctx.Done():
			return
		}
	}
}

// handleEvent records session state and dispatches the event to handlers in
// registration order.
func (c *Client) handleEvent(ev game.Event) {
	c.mu.Lock()
	if j, ok := ev.(game.Joined); ok {
		c.identity = j.ID
		c.name = j.Name
		c.room = j.Room
		c.seat = j.Seat
		c.spectator = j.Spectator
	}
	handlers := make([]EventHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		if h.typ == "" || h.typ == ev.EventType() {
			handlers = append(handlers, h.handler)
		}
	}
	c.mu.Unlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for event", "type", ev.EventType())
	}
	for _, handler := range handlers {
		handler(ev)
	}
}

// AddEventHandler adds an event handler for a specific event type and
// returns a function that removes it.
func (c *Client) AddEventHandler(t game.EventType, handler EventHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextHandler++
	id := c.nextHandler
	c.handlers = append(c.handlers, handlerEntry{id: id, typ: t, handler: handler})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, h := range c.handlers {
			if h.id == id {
				c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
				return
			}
		}
	}
}

// OnEvent adds a handler for every event type.
func (c *Client) OnEvent(handler EventHandler) func() {
	return c.AddEventHandler("", handler)
}

// OnDisconnect sets a callback for connections dropped by the server or the
// network. It is not called for Disconnect.
func (c *Client) OnDisconnect(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}

// CreateRoom asks for the room with the given code, creating it if needed.
// An empty code lets the server pick one.
func (c *Client) CreateRoom(room string) error {
	return c.SendMessage(protocol.TypeCreateRoom, protocol.CreateRoom{
		Room: room,
		ID:   string(c.Identity()),
		Name: c.Name(),
	})
}

// JoinRoom joins an existing room
func (c *Client) JoinRoom(room string) error {
	return c.SendMessage(protocol.TypeJoinRoom, protocol.JoinRoom{
		Room: room,
		ID:   string(c.Identity()),
		Name: c.Name(),
	})
}

// Play plays a card onto the current trick.
func (c *Client) Play(card deck.Card) error {
	return c.SendMessage(protocol.TypePlay, protocol.Play{Card: &card})
}

// SetTrump chooses trump during the trump round.
func (c *Client) SetTrump(suit deck.Suit) error {
	return c.SendMessage(protocol.TypeSetTrump, protocol.SetTrump{Suit: &suit})
}

// FinishSolitaire reports an emptied hand in a solitaire round.
func (c *Client) FinishSolitaire() error {
	return c.SendMessage(protocol.TypeSolitaireFinish, protocol.SolitaireFinish{})
}

// Chat sends a chat line to the room.
func (c *Client) Chat(text string) error {
	return c.SendMessage(protocol.TypeChat, protocol.Chat{Text: text})
}

// Reconnect dials again and rejoins the last room with the same identity.
func (c *Client) Reconnect(ctx context.Context) error {
	room := c.Room()
	if room == "" {
		return fmt.Errorf("client: no room to rejoin")
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.JoinRoom(room)
}

// Identity returns the identity sent with joins.
func (c *Client) Identity() game.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Name returns the display name.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Room returns the code of the joined room, or "" before the first Joined.
func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// Seat returns the joined seat, or -1 for spectators and before joining.
func (c *Client) Seat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.spectator {
		return -1
	}
	return c.seat
}

// WaitFor waits for the next event of the given type.
func (c *Client) WaitFor(ctx context.Context, t game.EventType) (game.Event, error) {
	responseChan := make(chan game.Event, 1)

	// Add temporary handler
	remove := c.AddEventHandler(t, func(ev game.Event) {
		select {
		case responseChan <- ev:
		default:
		}
	})
	defer remove()

	select {
	case ev := <-responseChan:
		return ev, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for %s: %w", t, ctx.Err())
	}
}
