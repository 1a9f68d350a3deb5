package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/withoutx/internal/game"
)

var (
	ErrRoomNotFound = errors.New("server: room not found")
	ErrRoomClosed   = errors.New("server: room closed")
	ErrNotInRoom    = errors.New("server: join a room first")
	ErrInvalidRoom  = errors.New("server: invalid room code")
)

const inboxSize = 64

type command struct {
	fn     func(*game.Room) error
	result chan error
}

// RoomActor owns one game.Room and applies every command to it from a
// single goroutine, in arrival order.
type RoomActor struct {
	room   *game.Room
	code   string
	inbox  chan command
	done   chan struct{}
	clock  quartz.Clock
	logger *log.Logger

	stopOnce sync.Once

	// Written by the actor goroutine, read by the sweeper.
	mu         sync.Mutex
	lastActive time.Time
	connected  int
}

// NewRoomActor starts the goroutine that owns room.
func NewRoomActor(room *game.Room, clock quartz.Clock, logger *log.Logger) *RoomActor {
	a := &RoomActor{
		room:       room,
		code:       room.Code(),
		inbox:      make(chan command, inboxSize),
		done:       make(chan struct{}),
		clock:      clock,
		logger:     logger.WithPrefix("actor").With("room", room.Code()),
		lastActive: clock.Now(),
	}
	go a.run()
	return a
}

// Code returns the room code.
func (a *RoomActor) Code() string {
	return a.code
}

func (a *RoomActor) run() {
	for {
		select {
		case cmd := <-a.inbox:
			cmd.result <- a.apply(cmd.fn)
		case <-a.done:
			return
		}
	}
}

func (a *RoomActor) apply(fn func(*game.Room) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Room command panicked", "panic", r)
			err = errors.New("server: internal error")
		}
		connected := a.room.ConnectedCount()
		a.mu.Lock()
		if connected > 0 || a.connected > 0 {
			a.lastActive = a.clock.Now()
		}
		a.connected = connected
		a.mu.Unlock()
	}()
	return fn(a.room)
}

// Do runs fn on the room goroutine and waits for its result.
func (a *RoomActor) Do(ctx context.Context, fn func(*game.Room) error) error {
	cmd := command{fn: fn, result: make(chan error, 1)}

	select {
	case a.inbox <- cmd:
	case <-a.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.result:
		return err
	case <-a.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Summary reads the room listing entry through the actor.
func (a *RoomActor) Summary(ctx context.Context) (game.Summary, error) {
	var s game.Summary
	err := a.Do(ctx, func(r *game.Room) error {
		s = r.Summary()
		return nil
	})
	return s, err
}

// IdleFor reports how long the room has had no live connection. It returns
// zero while anyone is connected.
func (a *RoomActor) IdleFor() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connected > 0 {
		return 0
	}
	return a.clock.Since(a.lastActive)
}

// Stop ends the actor goroutine. Pending and later calls to Do return
// ErrRoomClosed.
func (a *RoomActor) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
	})
}
