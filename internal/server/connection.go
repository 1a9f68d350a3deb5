package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lox/withoutx/internal/game"
	"github.com/lox/withoutx/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Upper bound on a single room command issued by a connection
	commandTimeout = 5 * time.Second
)

// Error codes sent in error frames.
const (
	codeRejected     = "rejected"
	codeRoomNotFound = "room_not_found"
	codeInvalidRoom  = "invalid_room"
	codeNotInRoom    = "not_in_room"
	codeRoomClosed   = "room_closed"
)

// Connection represents a WebSocket connection to a client. It implements
// game.Conn so rooms can push events straight into its send buffer.
type Connection struct {
	conn     *websocket.Conn
	send     chan []byte
	registry *Registry
	limiter  *rate.Limiter
	clock    quartz.Clock
	logger   *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.RWMutex
	actor    *RoomActor
	identity game.PlayerID
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, registry *Registry, cfg LimitSettings, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	limit := rate.Limit(cfg.MessagesPerSecond)
	if cfg.MessagesPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Connection{
		conn:     conn,
		send:     make(chan []byte, cfg.SendBuffer),
		registry: registry,
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		clock:    clock,
		logger:   logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String()),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Send queues an event for the client without blocking. A client that
// cannot keep up is disconnected.
func (c *Connection) Send(ev game.Event) {
	data, err := protocol.EncodeEvent(ev, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to encode event", "type", ev.EventType(), "error", err)
		return
	}

	select {
	case <-c.ctx.Done():
		return
	default:
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
	}
}

func (c *Connection) binding() (*RoomActor, game.PlayerID) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.actor, c.identity
}

func (c *Connection) bind(actor *RoomActor, id game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = actor
	c.identity = id
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.leave()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		if !c.limiter.Allow() {
			c.logger.Warn("Rate limit exceeded, dropping message")
			continue
		}

		c.handleMessage(data)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod, "conn", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(data []byte) {
	in, err := protocol.Decode(data)
	if err != nil {
		c.logger.Debug("Dropping message", "error", err)
		return
	}
	c.logger.Debug("Received message", "type", in.Type)

	ctx, cancel := context.WithTimeout(c.ctx, commandTimeout)
	defer cancel()

	if in.Room != nil {
		c.handleRoomRequest(ctx, in.Room)
		return
	}
	c.handleIntent(ctx, in.Intent)
}

func (c *Connection) handleRoomRequest(ctx context.Context, req *protocol.RoomRequest) {
	var (
		actor *RoomActor
		err   error
	)
	switch {
	case req.Create && req.Room == "":
		actor = c.registry.Create()
	case req.Create:
		actor, _, err = c.registry.GetOrCreate(req.Room)
	default:
		actor, err = c.registry.Get(req.Room)
	}
	if err != nil {
		c.reject(err)
		return
	}

	id := req.Identity
	if id == "" {
		id = game.PlayerID(uuid.NewString())
	}

	if prev, prevID := c.binding(); prev != nil && (prev != actor || prevID != id) {
		c.leave()
	}

	err = actor.Do(ctx, func(r *game.Room) error {
		return r.Join(id, req.Name, c)
	})
	if err != nil {
		c.reject(err)
		return
	}
	c.bind(actor, id)
	c.logger.Info("Joined room", "room", actor.Code(), "player", id, "name", req.Name)
}

func (c *Connection) handleIntent(ctx context.Context, in game.Intent) {
	actor, id := c.binding()
	if actor == nil {
		c.reject(ErrNotInRoom)
		return
	}

	err := actor.Do(ctx, func(r *game.Room) error {
		return r.Apply(id, in)
	})
	if err != nil {
		c.logger.Debug("Intent rejected", "room", actor.Code(), "player", id, "error", err)
		c.reject(err)
	}
}

// leave detaches the connection from its current room.
func (c *Connection) leave() {
	actor, id := c.binding()
	if actor == nil {
		return
	}
	c.bind(nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	err := actor.Do(ctx, func(r *game.Room) error {
		return r.Disconnect(id, c)
	})
	if err != nil && !errors.Is(err, ErrRoomClosed) {
		c.logger.Debug("Disconnect failed", "room", actor.Code(), "player", id, "error", err)
	}
}

// reject sends an error frame to this connection only.
func (c *Connection) reject(err error) {
	c.Send(game.Rejected{Code: errorCode(err), Message: err.Error()})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return codeRoomNotFound
	case errors.Is(err, ErrInvalidRoom):
		return codeInvalidRoom
	case errors.Is(err, ErrNotInRoom):
		return codeNotInRoom
	case errors.Is(err, ErrRoomClosed):
		return codeRoomClosed
	default:
		return codeRejected
	}
}
