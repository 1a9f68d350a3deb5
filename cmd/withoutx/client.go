package main

import (
	"github.com/lox/withoutx/internal/client/commands"
)

// ClientCmd groups the terminal client commands. Flags on the group apply
// to every subcommand.
type ClientCmd struct {
	commands.GlobalFlags `embed:""`

	Play  commands.PlayCommand      `cmd:"" default:"withargs" help:"Open the TUI, optionally entering a room"`
	Rooms commands.ListRoomsCommand `cmd:"" help:"List rooms on the server"`
}
