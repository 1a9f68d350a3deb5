package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/withoutx/internal/client"
	"github.com/lox/withoutx/internal/game"
)

// Program is the part of a tea.Program the bridge posts to.
type Program interface {
	Send(msg tea.Msg)
}

// Bridge forwards client events into a running program. Handlers run on the
// client's read goroutine; Program.Send hands them to the Bubble Tea loop
// so the model is only touched from Update.
type Bridge struct {
	client *client.Client
	detach func()
}

// NewBridge registers the forwarding handlers on c.
func NewBridge(c *client.Client, p Program) *Bridge {
	b := &Bridge{client: c}
	b.detach = c.OnEvent(func(ev game.Event) {
		p.Send(EventMsg{Event: ev})
	})
	c.OnDisconnect(func(err error) {
		p.Send(DisconnectedMsg{Err: err})
	})
	return b
}

// Close stops forwarding.
func (b *Bridge) Close() {
	b.detach()
	b.client.OnDisconnect(nil)
}
